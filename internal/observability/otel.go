package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hireforge/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics
type Metrics struct {
	// Generator call metrics
	GenerationDuration metric.Float64Histogram
	GenerationRequests metric.Int64Counter
	GenerationErrors   metric.Int64Counter
	GenerationTokens   metric.Int64Histogram

	// Business metrics
	QuestionsGenerated metric.Int64Counter
	ProfilesGenerated  metric.Int64Counter
	AdvancedGenerated  metric.Int64Counter
	SpeechSynthesized  metric.Int64Counter
	ChatTurns          metric.Int64Counter

	// Infrastructure metrics
	ActiveSessions metric.Int64UpDownCounter
	PromptReloads  metric.Int64Counter
	RateLimitHits  metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config
	resource         *resource.Resource
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.Server
	extraReaders     []sdkmetric.Reader
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	return newManager(obsConfig, fullConfig)
}

func newManager(obsConfig ObservabilityConfig, fullConfig *config.Config, readers ...sdkmetric.Reader) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
		extraReaders:  readers,
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// initResource creates the OpenTelemetry resource shared by traces and metrics
func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	readers := append([]sdkmetric.Reader(nil), om.extraReaders...)

	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// setupConsoleReader sets up console metric reader if enabled
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader sets up OTLP metric reader if enabled
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	*readers = append(*readers, otlpReader)
	return nil
}

// setupPrometheusReader sets up Prometheus metric reader and its scrape server if enabled
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	reader, handler, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	*readers = append(*readers, reader)

	om.prometheusServer = StartPrometheusServer(handler, om.config.Prometheus)
	om.shutdownFuncs = append(om.shutdownFuncs, om.prometheusServer.Shutdown)
	return nil
}

// initCustomMetrics creates all custom metrics
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createGenerationMetrics(meter); err != nil {
		return err
	}

	if err := om.createBusinessMetrics(meter); err != nil {
		return err
	}

	return om.createInfrastructureMetrics(meter)
}

// createGenerationMetrics creates generator call metrics
func (om *ObservabilityManager) createGenerationMetrics(meter metric.Meter) error {
	var err error

	om.metrics.GenerationDuration, err = meter.Float64Histogram(
		"hireforge_generation_duration_seconds",
		metric.WithDescription("Time spent in generator calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation duration metric: %w", err)
	}

	om.metrics.GenerationRequests, err = meter.Int64Counter(
		"hireforge_generation_requests_total",
		metric.WithDescription("Total number of generator calls"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation request metric: %w", err)
	}

	om.metrics.GenerationErrors, err = meter.Int64Counter(
		"hireforge_generation_errors_total",
		metric.WithDescription("Total number of failed generator calls"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation error metric: %w", err)
	}

	om.metrics.GenerationTokens, err = meter.Int64Histogram(
		"hireforge_generation_tokens",
		metric.WithDescription("Token usage of generator calls (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation token metric: %w", err)
	}

	return nil
}

// createBusinessMetrics creates artifact counters
func (om *ObservabilityManager) createBusinessMetrics(meter metric.Meter) error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&om.metrics.QuestionsGenerated, "hireforge_interview_questions_generated_total", "Total number of interview questions generated"},
		{&om.metrics.ProfilesGenerated, "hireforge_candidate_profiles_generated_total", "Total number of candidate profiles generated"},
		{&om.metrics.AdvancedGenerated, "hireforge_advanced_assets_generated_total", "Total number of advanced asset sets generated"},
		{&om.metrics.SpeechSynthesized, "hireforge_speech_synthesized_total", "Total number of texts read aloud"},
		{&om.metrics.ChatTurns, "hireforge_chat_turns_total", "Total number of chat turns"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}
	return nil
}

// createInfrastructureMetrics creates session, prompt reload and rate limiting metrics
func (om *ObservabilityManager) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ActiveSessions, err = meter.Int64UpDownCounter(
		"hireforge_sessions_active",
		metric.WithDescription("Number of live sessions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active sessions metric: %w", err)
	}

	om.metrics.PromptReloads, err = meter.Int64Counter(
		"hireforge_prompt_reloads_total",
		metric.WithDescription("Total number of prompt template reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create prompt reload metric: %w", err)
	}

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"hireforge_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

// getServiceInstanceID returns the service instance ID from config
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
