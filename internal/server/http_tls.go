package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "server":
		tlsConfig, err := s.buildTLSConfig()
		if err != nil {
			return fmt.Errorf("failed to set up TLS: %w", err)
		}
		httpServer.TLSConfig = tlsConfig
		fmt.Printf("Starting server with HTTPS on https://%s\n", addr)
		return nil
	case "", "disabled":
		fmt.Printf("Starting server on http://%s\n", addr)
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}
}

// buildTLSConfig loads the server key pair and applies the minimum version.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	if s.TLSConfig.CertFile == "" || s.TLSConfig.KeyFile == "" {
		return nil, fmt.Errorf("TLS certificate and key files are required")
	}

	cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tlsMinVersion(s.TLSConfig.MinVersion),
		ClientAuth:   tls.NoClientCert,
	}, nil
}

func tlsMinVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
