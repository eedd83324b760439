package observability

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"hireforge/internal/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter creates a Prometheus exporter backed by its own
// registry, and the handler that serves it.
func SetupPrometheusExporter(cfg PrometheusConfig) (metric.Reader, http.Handler, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return exporter, mux, nil
}

// StartPrometheusServer serves handler on the configured port in the background.
func StartPrometheusServer(handler http.Handler, cfg PrometheusConfig) *http.Server {
	addr := ":" + cfg.Port
	log.Printf("[METRICS] Serving Prometheus metrics on http://localhost%s%s", addr, cfg.Endpoint)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[METRICS] Prometheus server error: %v", err)
		}
	}()

	return server
}

// GetPrometheusConfig creates Prometheus configuration from provided config
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg != nil {
		return PrometheusConfig{
			Enabled:  cfg.Observability.Prometheus.Enabled,
			Endpoint: cfg.Observability.Prometheus.Endpoint,
			Port:     cfg.Observability.Prometheus.Port,
		}
	}

	return PrometheusConfig{
		Enabled:  true,
		Endpoint: "/metrics",
		Port:     "9090",
	}
}
