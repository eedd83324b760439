package server

import (
	"context"
	"sync"
	"time"

	"hireforge/internal/ai"
	"hireforge/internal/config"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/observability"
	"hireforge/internal/session"
	"hireforge/internal/types"
)

// GenerateJobAssetsRequest is the body of POST /sessions/{id}/job-assets
type GenerateJobAssetsRequest struct {
	Notes string                 `json:"notes"`
	Image *types.ImageAttachment `json:"image,omitempty"`
}

// SpeechRequest is the body of POST /speech
type SpeechRequest struct {
	Text string `json:"text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// SessionResponse describes a session and everything generated in it
type SessionResponse struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Assets    types.SessionAssets `json:"assets"`
	Running   []types.Task        `json:"running"`
}

// SubAssetsResponse is the body of POST /sessions/{id}/all. Error is set when
// one of the two generations failed; the other one's result is still applied.
type SubAssetsResponse struct {
	Assets types.SessionAssets `json:"assets"`
	Error  *ErrorResponse      `json:"error,omitempty"`
}

// HealthReporter exposes generator readiness for the health endpoint.
// *ai.Service satisfies it.
type HealthReporter interface {
	GetModelInfo(ctx context.Context) *ai.ModelInfo
	CircuitBreakerStats() map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication; replaced when Vault rotates the keys
	keysMu  sync.RWMutex
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Generator ai.Generator
	Sessions  *session.Registry

	// Set by Start; nil-safe everywhere
	om            *observability.ObservabilityManager
	promptWatcher *PromptWatcher
	keyWatcher    *VaultWatcher

	Logger *appErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// generationWriteMargin is the time left to encode and send a response after
// the generator is done.
const generationWriteMargin = 15 * time.Second

// writeTimeoutFor returns the configured write timeout, raised when a
// generation that uses all of its retries would outlive it. Zero means no
// timeout and is kept.
func writeTimeoutFor(cfg *config.Config) time.Duration {
	if cfg.Server.WriteTimeout <= 0 {
		return 0
	}
	return max(cfg.Server.WriteTimeout, cfg.GenerationBudget()+generationWriteMargin)
}

// ServerConfigFrom builds a ServerConfig from the application configuration.
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   writeTimeoutFor(cfg),
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server whose sessions use generator.
func NewServer(appCfg *config.Config, cfg ServerConfig, generator ai.Generator, logger *appErrors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Generator:      generator,
		Sessions: session.NewRegistry(generator, appCfg.AI.Language,
			appCfg.Session.MaxSessions, appCfg.Session.IdleTTL, logger),
		Logger: logger,
	}
	s.SetAPIKeys(cfg.APIKeys)
	return s
}

// SetAPIKeys replaces the accepted API keys.
func (s *Server) SetAPIKeys(keys []string) {
	apiKeyMap := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}
	s.keysMu.Lock()
	s.APIKeys = apiKeyMap
	s.keysMu.Unlock()
}

func (s *Server) apiKeyCount() int {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return len(s.APIKeys)
}

func (s *Server) validAPIKey(key string) bool {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return s.APIKeys[key]
}
