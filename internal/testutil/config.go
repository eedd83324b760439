package testutil

import (
	"time"

	"hireforge/internal/config"
)

// Config returns a loaded-equivalent configuration with short timeouts, a
// fake API key and circuit breakers disabled.
func Config() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:       "gemini",
			Model:          "test-model",
			SpeechModel:    "test-tts-model",
			Voice:          "Kore",
			Language:       "he",
			Timeout:        5 * time.Second,
			APIKey:         "test-key",
			MaxRetries:     2,
			ThinkingBudget: 128,
			StrictContract: true,
		},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			MaxRequestSize: 1 << 20,
			TLS:            config.TLSConfig{Mode: "disabled"},
			WebSocket: config.WebSocketConfig{
				PingInterval:   time.Minute,
				WriteTimeout:   5 * time.Second,
				MaxMessageSize: 64 << 10,
			},
		},
		Session: config.SessionConfig{
			MaxSessions: 16,
			IdleTTL:     time.Hour,
		},
		App: config.AppConfig{
			LogLevel:         "debug",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxImageSize:     1 << 20,
		},
		Observability: config.ObservabilityConfig{
			ServiceName: "hireforge-test",
			HealthCheck: config.HealthCheckConfig{
				Timeout:             time.Second,
				AIModelCheckTimeout: time.Second,
			},
		},
	}
}
