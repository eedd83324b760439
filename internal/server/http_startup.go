package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hireforge/internal/ai"
	"hireforge/internal/config"
	"hireforge/internal/observability"
)

// recorderSetter is implemented by generators that report their calls.
type recorderSetter interface {
	SetRecorder(r ai.Recorder)
}

// Start starts the HTTP server with all configured components and blocks
// until SIGINT or SIGTERM.
func (s *Server) Start() error {
	if err := s.initializeObservability(); err != nil {
		return err
	}
	defer s.shutdownObservability()

	s.startPromptWatcher()
	if err := s.startKeyWatcher(); err != nil {
		return err
	}

	httpServer := s.setupHTTPServer()
	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability and connects it to the
// session registry and the generator.
func (s *Server) initializeObservability() error {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.om = om

	s.Sessions.Observe(
		func(string) { om.SessionOpened(context.Background()) },
		func(string) { om.SessionClosed(context.Background()) },
	)
	if rs, ok := s.Generator.(recorderSetter); ok {
		rs.SetRecorder(om)
	}
	return nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// reloadPrompts re-reads the prompt template files and records the outcome.
func (s *Server) reloadPrompts() error {
	err := s.AppConfig.ReloadPrompts()
	s.om.RecordPromptReload(context.Background(), err)
	if err == nil {
		s.Logger.Info("Prompt templates reloaded")
	}
	return err
}

// startPromptWatcher watches the configured prompt files when enabled. A
// watcher that cannot start is logged; the server runs with the prompts it
// loaded at startup.
func (s *Server) startPromptWatcher() {
	if !s.AppConfig.Server.WatchPrompts {
		return
	}

	var paths []string
	for _, f := range s.AppConfig.PromptFiles() {
		paths = append(paths, f.Path)
	}
	if len(paths) == 0 {
		s.Logger.Warn("Prompt watching enabled but no prompt files are configured")
		return
	}

	pw := NewPromptWatcher(paths, s.AppConfig.Server.DebounceDelay, s.reloadPrompts, s.Logger)
	if err := pw.Start(); err != nil {
		s.Logger.LogError(err, "Failed to start prompt watcher")
		return
	}
	s.promptWatcher = pw
}

// startKeyWatcher polls Vault for rotated API keys when a poll interval is set.
func (s *Server) startKeyWatcher() error {
	vc := s.AppConfig.Vault
	if !vc.Enabled || vc.PollInterval <= 0 || vc.Secrets.ServerKeys == "" {
		return nil
	}

	client, err := config.NewVaultClient(vc, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Vault client: %w", err)
	}

	kw := NewVaultWatcher(client, vc.Secrets.ServerKeys, vc.PollInterval, func(keys []string, err error) {
		if err != nil {
			return
		}
		s.SetAPIKeys(keys)
	}, s.Logger)
	if err := kw.Start(); err != nil {
		return fmt.Errorf("failed to start Vault watcher: %w", err)
	}
	s.keyWatcher = kw
	return nil
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.stopBackground()
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.stopBackground()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// stopBackground stops the watchers and the rate limiter cleanup loop.
func (s *Server) stopBackground() {
	if s.promptWatcher != nil {
		if err := s.promptWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop prompt watcher")
		}
	}
	if s.keyWatcher != nil {
		if err := s.keyWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop Vault watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
