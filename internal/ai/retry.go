package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"hireforge/internal/config"
	appErrors "hireforge/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// retryBaseDelay is the first backoff step. Later steps double it.
var retryBaseDelay = config.RetryBackoffBase

const maxBackoff = config.RetryBackoffMax

// backoffDelay returns the wait before retry number attempt (1-based):
// exponential backoff with up to 10% jitter to prevent thundering herd.
func backoffDelay(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * retryBaseDelay
	var jitter time.Duration
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		jitterBig, _ := rand.Int(rand.Reader, big.NewInt(jitterMax))
		jitter = time.Duration(jitterBig.Int64())
	}
	return min(baseDelay+jitter, maxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// executeWithRetry runs fn with a per-attempt deadline and retries transport
// failures with exponential backoff.
func executeWithRetry[T any](ctx context.Context, g *GeminiProvider, op *operation, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	maxRetries := *op.cfg.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying generator call",
				"task", string(op.task),
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			if err := sleepContext(ctx, backoffDelay(attempt)); err != nil {
				return zero, err
			}
		}

		if err := g.waitForQuota(ctx); err != nil {
			return zero, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, *op.cfg.Timeout)
		result, err := fn(attemptCtx)
		cancel()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Generator call succeeded after retry",
					"task", string(op.task),
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// The caller gave up; the attempt deadline alone is retryable.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !isRetryableError(err) && !errors.Is(err, context.DeadlineExceeded) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"task", string(op.task),
				"error", err.Error())
			return zero, err
		}
	}

	g.logger.LogError(lastErr, "Generator call failed after all retry attempts",
		"task", string(op.task),
		"total_attempts", maxRetries+1)

	return zero, fmt.Errorf("task '%s' failed after %d retries: %w", op.task, maxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, refused connections) are transient
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	var genaiErrPtr *genai.APIError
	if errors.As(err, &genaiErrPtr) && genaiErrPtr != nil {
		return retryableStatus(genaiErrPtr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// classifyCallError converts a failed generator call into a transport error.
func classifyCallError(op *operation, err error) error {
	if _, ok := appErrors.As(err); ok {
		return err
	}

	var appErr *appErrors.AppError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		appErr = appErrors.NewTransportError(appErrors.ErrCodeCircuitOpen,
			"Generator temporarily unavailable for "+string(op.task), err)
	case errors.Is(err, context.DeadlineExceeded):
		appErr = appErrors.NewTransportError(appErrors.ErrCodeGenerationTimeout,
			"Generator timed out for "+string(op.task), err)
	default:
		appErr = appErrors.NewTransportError(appErrors.ErrCodeGenerationFailed,
			"Failed to generate content for "+string(op.task), err)
	}
	return appErr.WithContext("task", string(op.task)).WithContext("model", op.cfg.Model)
}
