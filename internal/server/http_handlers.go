package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	appErrors "hireforge/internal/errors"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if t := s.AppConfig.Observability.HealthCheck.AIModelCheckTimeout; t > 0 {
		return t
	}
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler reports the generator model and circuit breaker status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":   "healthy",
		"service":  "hireforge",
		"version":  s.Version,
		"sessions": s.Sessions.Len(),
	}

	healthy := true
	if reporter, ok := s.Generator.(HealthReporter); ok {
		ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
		defer cancel()

		modelInfo := reporter.GetModelInfo(ctx)
		response["ai_model"] = modelInfo
		if modelInfo != nil && !modelInfo.Available {
			healthy = false
		}

		if stats := reporter.CircuitBreakerStats(); stats != nil {
			response["circuit_breakers"] = stats
			if ok, exists := stats["overall_healthy"].(bool); exists && !ok {
				healthy = false
			}
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "hireforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    s.apiKeyCount(),
		},
		"sessions": map[string]any{
			"active":   s.Sessions.Len(),
			"max":      s.AppConfig.Session.MaxSessions,
			"idle_ttl": s.AppConfig.Session.IdleTTL.String(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.promptWatcher != nil {
		response["prompt_watcher"] = map[string]any{
			"running":       s.promptWatcher.IsRunning(),
			"watched_files": s.promptWatcher.GetWatchedFiles(),
		}
	}
	if s.keyWatcher != nil {
		response["vault_watcher"] = s.keyWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}
	return nil
}

// statusFor maps an error type to the HTTP status it is reported with.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch appErrors.TypeOf(err) {
	case appErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case appErrors.ErrorTypePrecondition:
		return http.StatusPreconditionFailed
	case appErrors.ErrorTypeConflict:
		return http.StatusConflict
	case appErrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case appErrors.ErrorTypeParse, appErrors.ErrorTypeSchema:
		return http.StatusBadGateway
	case appErrors.ErrorTypeTransport:
		switch {
		case appErrors.HasCode(err, appErrors.ErrCodeRateLimited), appErrors.HasCode(err, appErrors.ErrCodeCircuitOpen):
			return http.StatusServiceUnavailable
		case appErrors.HasCode(err, appErrors.ErrCodeGenerationTimeout):
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorResponseFor(err error) *ErrorResponse {
	if appErr, ok := appErrors.As(err); ok {
		return &ErrorResponse{Error: string(appErr.Type), Code: appErr.Code, Message: appErr.Message}
	}
	return &ErrorResponse{Error: "internal", Message: err.Error()}
}

// writeAppError logs err and writes it with its mapped status.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "status", status)
	} else {
		s.Logger.Debug("Request rejected", "endpoint", r.URL.Path, "status", status, "error", err.Error())
	}
	writeJSON(w, status, errorResponseFor(err))
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
