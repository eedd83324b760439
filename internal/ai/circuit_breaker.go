package ai

import (
	"context"
	"errors"
	"fmt"

	"hireforge/internal/config"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// AICircuitBreaker guards single-shot generator calls of one task
type AICircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
}

// StreamCircuitBreaker guards chat streams. A stream outcome is only known
// once it has been drained, so it uses the two-step breaker.
type StreamCircuitBreaker struct {
	cb *gobreaker.TwoStepCircuitBreaker[struct{}]
}

// ModelCircuitBreaker guards model metadata lookups used by health checks
type ModelCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.Model]
}

func breakerSettings(name string, task types.Task, cb config.CircuitBreakerConfig, logger *appErrors.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cb.MaxRequests,
		Interval:    cb.Interval,
		Timeout:     cb.Timeout,
		// A caller cancelling is not a generator fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cb.MinRequests &&
				failureRatio >= cb.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"task", string(task),
				"from", from.String(),
				"to", to.String(),
				"max_requests", cb.MaxRequests,
				"failure_threshold", cb.FailureThreshold)
		},
	}
}

// NewAICircuitBreaker creates a breaker for task, or nil when disabled
func NewAICircuitBreaker(task types.Task, cfg *config.OperationAIConfig, logger *appErrors.Logger) *AICircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	settings := breakerSettings(fmt.Sprintf("AI-%s", task), task, cfg.CircuitBreaker, logger)
	return &AICircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](settings),
	}
}

// NewStreamCircuitBreaker creates the chat stream breaker, or nil when disabled
func NewStreamCircuitBreaker(cfg *config.OperationAIConfig, logger *appErrors.Logger) *StreamCircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	settings := breakerSettings(fmt.Sprintf("AI-%s", types.TaskChat), types.TaskChat, cfg.CircuitBreaker, logger)
	return &StreamCircuitBreaker{
		cb: gobreaker.NewTwoStepCircuitBreaker[struct{}](settings),
	}
}

// NewModelCircuitBreaker creates a model lookup breaker, or nil when disabled
func NewModelCircuitBreaker(cfg *config.OperationAIConfig, logger *appErrors.Logger) *ModelCircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	settings := breakerSettings("AI-Model", types.TaskJobAssets, cfg.CircuitBreaker, logger)
	// Model info is less critical, so use more lenient settings
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 5 && failureRatio >= 0.8
	}

	return &ModelCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[*genai.Model](settings),
	}
}

// Execute executes the provided function with circuit breaker protection
func (cb *AICircuitBreaker) Execute(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// Allow reserves a stream slot. done must be called exactly once with the
// stream outcome.
func (cb *StreamCircuitBreaker) Allow() (done func(success bool), err error) {
	if cb == nil || cb.cb == nil {
		return func(bool) {}, nil
	}
	return cb.cb.Allow()
}

// ExecuteModel executes the provided model function with circuit breaker protection
func (cb *ModelCircuitBreaker) ExecuteModel(fn func() (*genai.Model, error)) (*genai.Model, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

func disabledStats() map[string]any {
	return map[string]any{"enabled": false}
}

// GetStats returns circuit breaker statistics
func (cb *AICircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return disabledStats()
	}
	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// GetStats returns stream circuit breaker statistics
func (cb *StreamCircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return disabledStats()
	}
	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// GetModelStats returns model circuit breaker statistics
func (cb *ModelCircuitBreaker) GetModelStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return disabledStats()
	}
	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *AICircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}

// IsHealthy returns true if the stream breaker is in closed state
func (cb *StreamCircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}

// IsModelHealthy returns true if the model circuit breaker is in closed state
func (cb *ModelCircuitBreaker) IsModelHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}
