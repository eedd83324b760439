package server

import (
	"testing"
	"time"

	"hireforge/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestServerConfigFromWriteTimeout(t *testing.T) {
	tests := []struct {
		name         string
		writeTimeout time.Duration
		aiTimeout    time.Duration
		maxRetries   int
		want         time.Duration
	}{
		{
			name:         "raised to the retry budget",
			writeTimeout: 300 * time.Second,
			aiTimeout:    180 * time.Second,
			maxRetries:   3,
			want:         727700*time.Millisecond + generationWriteMargin,
		},
		{
			name:         "generous setting is kept",
			writeTimeout: time.Hour,
			aiTimeout:    time.Minute,
			maxRetries:   1,
			want:         time.Hour,
		},
		{
			name:       "disabled stays disabled",
			aiTimeout:  time.Minute,
			maxRetries: 3,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				AI:     config.AIConfig{Timeout: tt.aiTimeout, MaxRetries: tt.maxRetries},
				Server: config.ServerConfig{WriteTimeout: tt.writeTimeout},
			}
			assert.Equal(t, tt.want, ServerConfigFrom(cfg, "test").WriteTimeout)
		})
	}
}
