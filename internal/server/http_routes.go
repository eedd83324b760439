package server

import (
	"net/http"

	"hireforge/internal/observability"
)

// Handler returns the server's routes wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	return s.om.HTTPMiddleware()(s.setupRoutes())
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimit := s.rateLimitMiddleware()
	requestLimit := s.requestSizeLimitMiddleware()
	traced := observability.ObservabilityMiddleware(s.om)

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimit(s.authMiddleware(requestLimit(traced(h))))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /sessions", protected(s.createSessionHandler))
	mux.HandleFunc("GET /sessions/{id}", protected(s.getSessionHandler))
	mux.HandleFunc("DELETE /sessions/{id}", protected(s.deleteSessionHandler))
	mux.HandleFunc("GET /sessions/{id}/export", protected(s.exportHandler))
	mux.HandleFunc("POST /sessions/{id}/job-assets", protected(s.jobAssetsHandler))
	mux.HandleFunc("POST /sessions/{id}/profiles", protected(s.profilesHandler))
	mux.HandleFunc("POST /sessions/{id}/advanced", protected(s.advancedHandler))
	mux.HandleFunc("POST /sessions/{id}/all", protected(s.subAssetsHandler))
	mux.HandleFunc("PUT /sessions/{id}/job-description", protected(s.updateJobDescriptionHandler))
	mux.HandleFunc("GET /sessions/{id}/chat/messages", protected(s.chatMessagesHandler))
	mux.HandleFunc("GET /sessions/{id}/chat", rateLimit(s.authMiddleware(s.chatSocketHandler)))
	mux.HandleFunc("POST /speech", protected(s.speechHandler))

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKeyCount() == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.validAPIKey(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
