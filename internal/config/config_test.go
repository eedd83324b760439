package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "gemini-3-pro-preview", cfg.AI.Model)
	assert.Equal(t, "he", cfg.AI.Language)
	assert.Equal(t, int32(32768), cfg.AI.ThinkingBudget)
	assert.True(t, cfg.AI.StrictContract)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
	assert.Empty(t, cfg.AI.APIKey, "a missing key is not a load error")
}

func TestLoadConfigFileOverrides(t *testing.T) {
	t.Setenv("HIREFORGE_AI_MODEL", "gemini-env-model")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg, err := LoadConfigFile(writeConfig(t, `
ai:
  model: gemini-file-model
  language: en
  thinkingBudget: 1024
  candidateProfiles:
    model: gemini-flash
    timeout: 30s
    temperature: 0.4
server:
  apiKeys: "one, two"
`))
	require.NoError(t, err)

	assert.Equal(t, "gemini-env-model", cfg.AI.Model, "environment wins over file")
	assert.Equal(t, "env-gemini-key", cfg.AI.APIKey)
	assert.Equal(t, "en", cfg.AI.Language)
	assert.Equal(t, []string{"one", "two"}, cfg.Server.APIKeys)

	profiles := cfg.GetOperationConfig(types.TaskCandidateProfiles)
	assert.Equal(t, "gemini-flash", profiles.Model)
	assert.Equal(t, 30*time.Second, *profiles.Timeout)
	assert.InDelta(t, 0.4, float64(*profiles.Temperature), 0.0001)
	assert.Equal(t, int32(1024), *profiles.ThinkingBudget)
	assert.Equal(t, "env-gemini-key", profiles.APIKey)
}

func TestLoadConfigFileMissingPromptFile(t *testing.T) {
	_, err := LoadConfigFile(writeConfig(t, `
prompts:
  systemPrompts:
    jobAssetsFile: /nonexistent/prompt.md
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file validation failed")
}

func TestLoadConfigFileExplicitPathMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetOperationConfig(t *testing.T) {
	speechBudget := int32(0)
	cfg := &Config{
		AI: AIConfig{
			Model:          "gemini-3-pro-preview",
			SpeechModel:    "gemini-2.5-flash-preview-tts",
			Voice:          "Kore",
			Language:       "he",
			Timeout:        180 * time.Second,
			APIKey:         "global",
			MaxRetries:     3,
			ThinkingBudget: 32768,
			Speech:         OperationAIConfig{ThinkingBudget: &speechBudget},
			Chat:           OperationAIConfig{Model: "gemini-chat", APIKey: "chat-key"},
		},
	}

	speech := cfg.GetOperationConfig(types.TaskSpeech)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", speech.Model)
	assert.Equal(t, "Kore", speech.Voice)
	assert.Equal(t, int32(0), *speech.ThinkingBudget)

	chat := cfg.GetOperationConfig(types.TaskChat)
	assert.Equal(t, "gemini-chat", chat.Model)
	assert.Equal(t, "chat-key", chat.APIKey)
	assert.Equal(t, 3, *chat.MaxRetries)

	job := cfg.GetOperationConfig(types.TaskJobAssets)
	assert.Equal(t, "gemini-3-pro-preview", job.Model)
	assert.Equal(t, int32(32768), *job.ThinkingBudget)
	assert.Equal(t, 180*time.Second, *job.Timeout)

	// Resolving must not write back into the configuration.
	assert.Nil(t, cfg.AI.JobAssets.Timeout)
	assert.Len(t, cfg.GetOperationConfigs(), 5)
}

func TestGenerationBudget(t *testing.T) {
	tests := []struct {
		name string
		ai   AIConfig
		want time.Duration
	}{
		{
			name: "defaults",
			ai:   AIConfig{Timeout: 180 * time.Second, MaxRetries: 3},
			// 4 attempts, then 1s, 2s and 4s backoff with 10% jitter
			want: 720*time.Second + 7700*time.Millisecond,
		},
		{
			name: "no retries",
			ai:   AIConfig{Timeout: time.Minute},
			want: time.Minute,
		},
		{
			name: "backoff is capped",
			ai:   AIConfig{Timeout: time.Second, MaxRetries: 7},
			// 1.1 + 2.2 + 4.4 + 8.8 + 17.6 + 30 + 30
			want: 8*time.Second + 94100*time.Millisecond,
		},
		{
			name: "slowest task wins and chat is ignored",
			ai: AIConfig{
				Timeout:        time.Minute,
				AdvancedAssets: OperationAIConfig{Timeout: durationPtr(5 * time.Minute)},
				Chat:           OperationAIConfig{Timeout: durationPtr(time.Hour)},
			},
			want: 5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AI: tt.ai}
			assert.Equal(t, tt.want, cfg.GenerationBudget())
		})
	}
}

func durationPtr(d time.Duration) *time.Duration { return &d }

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI:      AIConfig{Timeout: time.Minute, Language: "he"},
			Server:  ServerConfig{Port: "8080", TLS: TLSConfig{Mode: "disabled"}},
			Session: SessionConfig{MaxSessions: 10},
			App:     AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "text"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }, "timeout"},
		{"negative retries", func(c *Config) { c.AI.MaxRetries = -1 }, "maxRetries"},
		{"negative budget", func(c *Config) { c.AI.ThinkingBudget = -1 }, "thinkingBudget"},
		{"blank language", func(c *Config) { c.AI.Language = " " }, "language"},
		{"no port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"no sessions", func(c *Config) { c.Session.MaxSessions = 0 }, "maxSessions"},
		{"unknown format", func(c *Config) { c.App.DefaultFormat = "xml" }, "default format"},
		{"server tls without files", func(c *Config) { c.Server.TLS.Mode = "server" }, "certificate"},
		{"mutual tls", func(c *Config) { c.Server.TLS.Mode = "mutual" }, "invalid TLS mode"},
		{"bad tls version", func(c *Config) {
			c.Server.TLS = TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.1"}
		}, "minVersion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
