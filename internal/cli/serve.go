package cli

import (
	"fmt"

	"hireforge/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start an HTTP server exposing recruitment sessions over REST and a
websocket chat.

Available endpoints:
- POST   /sessions                      Create a session
- GET    /sessions/{id}                 Session snapshot and running tasks
- DELETE /sessions/{id}                 Drop a session
- GET    /sessions/{id}/export          Render artifacts (?format=text|markdown|json)
- POST   /sessions/{id}/job-assets      Generate the job description and interview guide
- PUT    /sessions/{id}/job-description Replace the edited job description
- POST   /sessions/{id}/profiles        Generate candidate profiles
- POST   /sessions/{id}/advanced        Generate the advanced toolkit
- POST   /sessions/{id}/all             Generate profiles and toolkit in parallel
- GET    /sessions/{id}/chat            Streaming chat (websocket)
- GET    /sessions/{id}/chat/messages   Chat log
- POST   /speech                        Text to WAV
- GET    /health                        Health check
- GET    /stats                         Server statistics

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

var serveFlags struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	overrides := []struct {
		flag   string
		target *string
		value  string
	}{
		{"port", &cfg.Server.Port, serveFlags.port},
		{"host", &cfg.Server.Host, serveFlags.host},
		{"tls-mode", &cfg.Server.TLS.Mode, serveFlags.tlsMode},
		{"cert-file", &cfg.Server.TLS.CertFile, serveFlags.certFile},
		{"key-file", &cfg.Server.TLS.KeyFile, serveFlags.keyFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target = o.value
		}
	}

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	generator, closeFn, err := generatorFactory(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("Failed to close generation client", "error", err)
		}
	}()

	return server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), generator, logger).Start()
}
