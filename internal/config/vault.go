package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hireforge/internal/errors"
	"hireforge/internal/types"

	"github.com/hashicorp/vault/api"
)

// Field names read from the KVv2 secrets.
const (
	// ServerKeysField holds the comma-separated client API keys.
	ServerKeysField = "keys"
	// GeminiKeyField holds one generator API key.
	GeminiKeyField = "api_key"
)

// VaultConfig points hireforge at the KVv2 mount holding its credentials.
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// PollInterval re-reads the server key list when positive.
	PollInterval time.Duration `mapstructure:"pollInterval"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets names the KVv2 path of each credential. Empty paths are skipped.
type VaultSecrets struct {
	// ServerKeys lists the keys clients present to the HTTP server.
	ServerKeys string `mapstructure:"serverKeys"`
	// GeminiKey is the generator key of every task without a key of its own.
	GeminiKey string `mapstructure:"geminiKey"`
	// Tasks gives single tasks their own generator key.
	Tasks TaskKeyPaths `mapstructure:"tasks"`
}

// TaskKeyPaths mirrors the per-task sections of AIConfig.
type TaskKeyPaths struct {
	JobAssets         string `mapstructure:"jobAssets"`
	CandidateProfiles string `mapstructure:"candidateProfiles"`
	AdvancedAssets    string `mapstructure:"advancedAssets"`
	Speech            string `mapstructure:"speech"`
	Chat              string `mapstructure:"chat"`
}

// token returns the configured token, falling back to the token file.
func (vc VaultConfig) token() (string, error) {
	token := strings.TrimSpace(vc.Token)
	if token == "" && vc.TokenFile != "" {
		data, err := os.ReadFile(vc.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"Cannot read the Vault token file", err).WithContext("file", vc.TokenFile)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Vault is enabled but no token is configured", nil)
	}
	return token, nil
}

// VaultSecret is one version of a KVv2 secret.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// Field returns the trimmed string stored under name.
func (s *VaultSecret) Field(name string) (string, error) {
	raw, ok := s.Data[name].(string)
	if !ok {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Secret has no string field %q", name), nil).
			WithContext("version", s.Version)
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("Secret field %q is empty", name), nil).
			WithContext("version", s.Version)
	}
	return value, nil
}

// ServerKeys returns the client API keys. An empty list is an error: it
// would lock every client out.
func (s *VaultSecret) ServerKeys() ([]string, error) {
	raw, err := s.Field(ServerKeysField)
	if err != nil {
		return nil, err
	}
	keys := splitKeys(raw)
	if len(keys) == 0 {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Secret lists no server API keys", nil).WithContext("version", s.Version)
	}
	return keys, nil
}

// SecretReader reads the current version of a KVv2 secret. *VaultClient
// satisfies it.
type SecretReader interface {
	ReadSecret(path string) (*VaultSecret, error)
}

// VaultClient reads hireforge credentials from Vault.
type VaultClient struct {
	api    *api.Client
	logger *errors.Logger
}

// NewVaultClient authenticates against Vault and checks that it is unsealed.
func NewVaultClient(vc VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !vc.Enabled {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Vault is not enabled", nil)
	}
	token, err := vc.token()
	if err != nil {
		return nil, err
	}

	apiCfg := api.DefaultConfig()
	if vc.Address != "" {
		apiCfg.Address = vc.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Cannot create the Vault client", err)
	}
	client.SetToken(token)
	if vc.Namespace != "" {
		client.SetNamespace(vc.Namespace)
	}

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewTransportError(errors.ErrCodeVaultUnavailable, "Vault is unreachable", err).
			WithContext("address", apiCfg.Address)
	}
	if health.Sealed {
		return nil, errors.NewTransportError(errors.ErrCodeVaultUnavailable, "Vault is sealed", nil).
			WithContext("address", apiCfg.Address)
	}

	logger.Info("Connected to Vault", "address", apiCfg.Address, "version", health.Version)
	return &VaultClient{api: client, logger: logger}, nil
}

// ReadSecret implements SecretReader.
func (c *VaultClient) ReadSecret(path string) (*VaultSecret, error) {
	raw, err := c.api.Logical().Read(path)
	if err != nil {
		return nil, errors.NewTransportError(errors.ErrCodeVaultUnavailable, "Cannot read Vault secret", err).
			WithContext("path", path)
	}
	if raw == nil || raw.Data == nil {
		return nil, errors.NewNotFoundError(errors.ErrCodeSecretNotFound, "Vault secret does not exist", nil).
			WithContext("path", path)
	}
	secret, err := decodeKV(path, raw.Data)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Read Vault secret", "path", path, "version", secret.Version)
	return secret, nil
}

// decodeKV unwraps the data and metadata envelopes of a KVv2 read.
func decodeKV(path string, body map[string]any) (*VaultSecret, error) {
	data, ok := body["data"].(map[string]any)
	if !ok {
		return nil, errors.NewParseError(errors.ErrCodeInvalidFormat, "Vault secret is not a KVv2 secret", nil).
			WithContext("path", path)
	}
	meta, _ := body["metadata"].(map[string]any)
	version, err := kvVersion(meta["version"])
	if err != nil {
		return nil, errors.NewParseError(errors.ErrCodeInvalidFormat, "Vault secret has no usable version", err).
			WithContext("path", path)
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

func kvVersion(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case nil:
		return 0, fmt.Errorf("version is missing")
	default:
		return 0, fmt.Errorf("version has type %T", v)
	}
}

// ApplyVaultSecrets overlays the credentials stored in Vault on cfg. Vault
// values win over file and environment values. A task without a Vault path
// keeps its configured key and otherwise falls back to the shared one.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		logger.Debug("Vault disabled, using configured credentials")
		return nil
	}
	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return err
	}
	return applySecrets(client, cfg, logger)
}

func applySecrets(reader SecretReader, cfg *Config, logger *errors.Logger) error {
	paths := cfg.Vault.Secrets

	// Tasks commonly share a path; each one is read once.
	read := make(map[string]*VaultSecret)
	load := func(path string) (*VaultSecret, error) {
		if s, ok := read[path]; ok {
			return s, nil
		}
		s, err := reader.ReadSecret(path)
		if err != nil {
			return nil, err
		}
		read[path] = s
		return s, nil
	}

	if paths.ServerKeys != "" {
		secret, err := load(paths.ServerKeys)
		if err != nil {
			return err
		}
		keys, err := secret.ServerKeys()
		if err != nil {
			return err
		}
		cfg.Server.APIKeys = keys
		logger.Info("Server API keys loaded from Vault", "count", len(keys), "version", secret.Version)
	}

	targets := []struct {
		task types.Task
		path string
		key  *string
	}{
		{"", paths.GeminiKey, &cfg.AI.APIKey},
		{types.TaskJobAssets, paths.Tasks.JobAssets, &cfg.AI.JobAssets.APIKey},
		{types.TaskCandidateProfiles, paths.Tasks.CandidateProfiles, &cfg.AI.CandidateProfiles.APIKey},
		{types.TaskAdvancedAssets, paths.Tasks.AdvancedAssets, &cfg.AI.AdvancedAssets.APIKey},
		{types.TaskSpeech, paths.Tasks.Speech, &cfg.AI.Speech.APIKey},
		{types.TaskChat, paths.Tasks.Chat, &cfg.AI.Chat.APIKey},
	}
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		secret, err := load(t.path)
		if err != nil {
			return err
		}
		key, err := secret.Field(GeminiKeyField)
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeMissingAPIKey,
				"Vault secret holds no generator key", err).
				WithContext("path", t.path).
				WithContext("task", string(t.task))
		}
		*t.key = key
		logger.Info("Generator key loaded from Vault", "task", string(t.task), "path", t.path)
	}
	return nil
}
