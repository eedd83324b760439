package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"hireforge/internal/ai"
	"hireforge/internal/testutil"
	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestManager(t *testing.T) (*ObservabilityManager, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := testutil.Config()
	cfg.Observability.Enabled = true
	cfg.Observability.CustomMetrics.Generation.Enabled = true
	cfg.Observability.CustomMetrics.Generation.TrackDuration = true
	cfg.Observability.CustomMetrics.Generation.TrackTokenUsage = true
	cfg.Observability.CustomMetrics.BusinessMetrics.Enabled = true
	cfg.Observability.CustomMetrics.Infrastructure.Enabled = true
	cfg.Observability.CustomMetrics.Infrastructure.TrackSessions = true
	cfg.Observability.CustomMetrics.Infrastructure.TrackRateLimits = true

	obsCfg := GetObservabilityConfig(cfg, "test")
	obsCfg.ConsoleOutput = false
	obsCfg.Prometheus.Enabled = false

	reader := sdkmetric.NewManualReader()
	om, err := newManager(obsCfg, cfg, reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	return om, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordGeneration(t *testing.T) {
	om, reader := newTestManager(t)
	ctx := context.Background()

	om.RecordGeneration(ctx, types.TaskJobAssets, &ai.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, time.Second, nil)
	om.RecordGeneration(ctx, types.TaskChat, nil, time.Second, errors.New("down"))

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["hireforge_generation_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["hireforge_generation_errors_total"]))

	tokens, ok := metrics["hireforge_generation_tokens"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, tokens.DataPoints, 3, "one series per token type")

	_, ok = metrics["hireforge_generation_duration_seconds"]
	assert.True(t, ok)
}

func TestRecordGenerationRespectsConfig(t *testing.T) {
	om, reader := newTestManager(t)
	om.fullConfig.Observability.CustomMetrics.Generation.Enabled = false

	om.RecordGeneration(context.Background(), types.TaskJobAssets, nil, time.Second, nil)

	metrics := collect(t, reader)
	_, recorded := metrics["hireforge_generation_requests_total"]
	assert.False(t, recorded)
}

func TestBusinessAndInfrastructureMetrics(t *testing.T) {
	om, reader := newTestManager(t)
	ctx := context.Background()

	om.RecordBusinessMetric(ctx, EventQuestionsGenerated, 21)
	om.RecordBusinessMetric(ctx, EventProfilesGenerated, 3)
	om.RecordBusinessMetric(ctx, EventChatTurn, 0)
	om.SessionOpened(ctx)
	om.SessionOpened(ctx)
	om.SessionClosed(ctx)
	om.RecordRateLimitHit(ctx, "api_key")
	om.RecordPromptReload(ctx, nil)

	metrics := collect(t, reader)
	assert.Equal(t, int64(21), sumOf(t, metrics["hireforge_interview_questions_generated_total"]))
	assert.Equal(t, int64(3), sumOf(t, metrics["hireforge_candidate_profiles_generated_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["hireforge_sessions_active"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["hireforge_rate_limit_hits_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["hireforge_prompt_reloads_total"]))
	_, recorded := metrics["hireforge_chat_turns_total"]
	assert.False(t, recorded, "zero counts are not recorded")
}

func TestDisabledManagerIsInert(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	om.RecordGeneration(ctx, types.TaskJobAssets, nil, time.Second, nil)
	om.RecordBusinessMetric(ctx, EventChatTurn, 1)
	om.SessionOpened(ctx)
	assert.NotNil(t, om.Tracer("x"))
	assert.NoError(t, om.Shutdown(ctx))

	var nilManager *ObservabilityManager
	nilManager.RecordGeneration(ctx, types.TaskJobAssets, nil, time.Second, nil)
	nilManager.RecordRateLimitHit(ctx, "ip")
	assert.NoError(t, nilManager.Shutdown(ctx))
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := testutil.Config()
	cfg.Observability.ServiceName = "hireforge"
	cfg.Observability.ServiceVersion = ""
	cfg.Observability.Tracing.Enabled = false

	obs := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Zero(t, obs.SampleRate, "disabled tracing samples nothing")

	fallback := GetObservabilityConfig(nil, "dev")
	assert.Equal(t, "hireforge", fallback.ServiceName)
	assert.Equal(t, "/metrics", fallback.Prometheus.Endpoint)
}
