package observability

import (
	"net/http"

	"hireforge/internal/config"

	"go.opentelemetry.io/otel/attribute"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "hireforge",
			ServiceVersion: version,
			Enabled:        true,
			ConsoleOutput:  true,
			PrettyPrint:    true,
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(nil),
		}
	}

	obsConfig := cfg.Observability

	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obsConfig.SampleRate
	if !obsConfig.Tracing.Enabled {
		sampleRate = 0
	} else if obsConfig.Tracing.SampleRate > 0 {
		sampleRate = obsConfig.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:    obsConfig.ServiceName,
		ServiceVersion: serviceVersion,
		Enabled:        obsConfig.Enabled,
		ConsoleOutput:  obsConfig.ConsoleOutput || obsConfig.Console.Enabled,
		PrettyPrint:    obsConfig.Console.PrettyPrint,
		SampleRate:     sampleRate,
		Prometheus:     GetPrometheusConfig(cfg),
	}
}

// ObservabilityMiddleware tags the request span with session routing attributes.
func ObservabilityMiddleware(om *ObservabilityManager) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if om == nil || !om.config.Enabled {
				next(w, r)
				return
			}

			ctx, span := om.Tracer("hireforge.http").Start(r.Context(), r.Method+" "+r.Pattern)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.Pattern),
				attribute.String("http.user_agent", r.UserAgent()),
			)
			if id := r.PathValue("id"); id != "" {
				span.SetAttributes(attribute.String("session.id", id))
			}

			next(w, r.WithContext(ctx))
		}
	}
}
