package server

import (
	"fmt"
	"sync"
	"time"

	"hireforge/internal/config"
	"hireforge/internal/errors"
)

// APIKeysCallback receives the rotated key list, or the error that
// prevented reading it.
type APIKeysCallback func(keys []string, err error)

// VaultWatcher polls the API key secret and hands the key list to the
// callback whenever the secret version moves forward.
type VaultWatcher struct {
	mu sync.RWMutex

	client       config.SecretReader
	secretPath   string
	pollInterval time.Duration
	onKeys       APIKeysCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastCheck   time.Time
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client config.SecretReader, secretPath string, pollInterval time.Duration, onKeys APIKeysCallback, logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onKeys:       onKeys,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start records the current secret version and begins polling. Keys loaded
// at startup are not re-delivered.
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	if vw.pollInterval <= 0 {
		return fmt.Errorf("vault poll interval must be positive")
	}

	if secret, err := vw.client.ReadSecret(vw.secretPath); err == nil {
		vw.lastVersion = secret.Version
	} else {
		vw.logger.Warn("Initial Vault version check failed", "secret_path", vw.secretPath, "error", err)
	}

	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault watcher stopped")
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll reads the secret once and delivers its keys when the version is new.
func (vw *VaultWatcher) poll() {
	secret, err := vw.client.ReadSecret(vw.secretPath)

	vw.mu.Lock()
	vw.lastCheck = time.Now()
	if err != nil {
		vw.mu.Unlock()
		vw.logger.LogError(err, "Failed to check Vault for updates", "secret_path", vw.secretPath)
		vw.onKeys(nil, fmt.Errorf("failed to read secret: %w", err))
		return
	}
	if secret.Version <= vw.lastVersion {
		vw.mu.Unlock()
		return
	}
	vw.lastVersion = secret.Version
	vw.mu.Unlock()

	keys, err := secret.ServerKeys()
	if err != nil {
		vw.logger.LogError(err, "Rotated Vault secret has no usable API keys", "secret_path", vw.secretPath)
		vw.onKeys(nil, err)
		return
	}
	vw.logger.Info("API keys rotated from Vault", "version", secret.Version, "count", len(keys))
	vw.onKeys(keys, nil)
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	status := map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
	if !vw.lastCheck.IsZero() {
		status["last_check"] = vw.lastCheck
	}
	return status
}
