package observability

import (
	"context"
	"time"

	"hireforge/internal/ai"
	"hireforge/internal/config"
	"hireforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var _ ai.Recorder = (*ObservabilityManager)(nil)

// BusinessEvent names a countable domain outcome.
type BusinessEvent string

const (
	EventQuestionsGenerated BusinessEvent = "questions_generated"
	EventProfilesGenerated  BusinessEvent = "profiles_generated"
	EventAdvancedGenerated  BusinessEvent = "advanced_generated"
	EventSpeechSynthesized  BusinessEvent = "speech_synthesized"
	EventChatTurn           BusinessEvent = "chat_turn"
)

// RecordGeneration records the outcome of one generator call.
func (om *ObservabilityManager) RecordGeneration(ctx context.Context, task types.Task, usage *ai.TokenUsage, duration time.Duration, err error) {
	m := om.GetMetrics()
	if m.GenerationRequests == nil || !om.generationMetricsEnabled() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("task", string(task)),
		attribute.Bool("success", err == nil),
	}

	if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.Generation.TrackDuration {
		m.GenerationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	m.GenerationRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.GenerationErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	span := oteltrace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
	}

	if usage == nil {
		return
	}
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.Generation.TrackTokenUsage {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		tokenAttrs := append([]attribute.KeyValue{attribute.String("token_type", tt.tokenType)}, attrs[0])
		m.GenerationTokens.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordBusinessMetric adds count occurrences of event.
func (om *ObservabilityManager) RecordBusinessMetric(ctx context.Context, event BusinessEvent, count int, attributes ...attribute.KeyValue) {
	if count <= 0 {
		return
	}
	if om != nil && om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled {
		return
	}

	m := om.GetMetrics()
	var counter metric.Int64Counter
	switch event {
	case EventQuestionsGenerated:
		counter = m.QuestionsGenerated
	case EventProfilesGenerated:
		counter = m.ProfilesGenerated
	case EventAdvancedGenerated:
		counter = m.AdvancedGenerated
	case EventSpeechSynthesized:
		counter = m.SpeechSynthesized
	case EventChatTurn:
		counter = m.ChatTurns
	}
	if counter != nil {
		counter.Add(ctx, int64(count), metric.WithAttributes(attributes...))
	}
}

// SessionOpened and SessionClosed track the number of live sessions.
func (om *ObservabilityManager) SessionOpened(ctx context.Context) {
	om.addSessions(ctx, 1)
}

func (om *ObservabilityManager) SessionClosed(ctx context.Context) {
	om.addSessions(ctx, -1)
}

func (om *ObservabilityManager) addSessions(ctx context.Context, delta int64) {
	if !om.infrastructureEnabled(func(c config.InfrastructureMetricsConfig) bool { return c.TrackSessions }) {
		return
	}
	if m := om.GetMetrics(); m.ActiveSessions != nil {
		m.ActiveSessions.Add(ctx, delta)
	}
}

// RecordRateLimitHit counts a rejected request.
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limiter string) {
	if !om.infrastructureEnabled(func(c config.InfrastructureMetricsConfig) bool { return c.TrackRateLimits }) {
		return
	}
	if m := om.GetMetrics(); m.RateLimitHits != nil {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter", limiter)))
	}
}

// RecordPromptReload counts a prompt template reload attempt.
func (om *ObservabilityManager) RecordPromptReload(ctx context.Context, err error) {
	if !om.infrastructureEnabled(nil) {
		return
	}
	if m := om.GetMetrics(); m.PromptReloads != nil {
		m.PromptReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	}
}

func (om *ObservabilityManager) infrastructureEnabled(flag func(config.InfrastructureMetricsConfig) bool) bool {
	if om == nil || om.fullConfig == nil {
		return true
	}
	infra := om.fullConfig.Observability.CustomMetrics.Infrastructure
	return infra.Enabled && (flag == nil || flag(infra))
}

func (om *ObservabilityManager) generationMetricsEnabled() bool {
	return om == nil || om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.Generation.Enabled
}
