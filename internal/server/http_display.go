package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayReloadInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /health                              - Health check")
	fmt.Println("  GET    /stats                               - Server statistics")
	fmt.Println("  POST   /sessions                            - Open a session")
	fmt.Println("  GET    /sessions/{id}                       - Session assets and running tasks")
	fmt.Println("  DELETE /sessions/{id}                       - Close a session")
	fmt.Println("  GET    /sessions/{id}/export                - Rendered assets (?format=text|markdown|json)")
	fmt.Println("  POST   /sessions/{id}/job-assets            - Job description and interview questions")
	fmt.Println("  POST   /sessions/{id}/profiles              - Candidate profiles")
	fmt.Println("  POST   /sessions/{id}/advanced              - Screening and outreach assets")
	fmt.Println("  POST   /sessions/{id}/all                   - Profiles and advanced assets together")
	fmt.Println("  PUT    /sessions/{id}/job-description       - Replace the job description")
	fmt.Println("  GET    /sessions/{id}/chat/messages         - Chat log")
	fmt.Println("  GET    /sessions/{id}/chat                  - Chat websocket")
	fmt.Println("  POST   /speech                              - Text to WAV speech")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if n := s.apiKeyCount(); n > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Println("Include 'X-API-Key: <your-key>' or 'Authorization: Bearer <your-key>' in requests")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

// displayReloadInfo shows which hot reloads are active
func (s *Server) displayReloadInfo() {
	if s.promptWatcher != nil {
		fmt.Printf("Prompt hot reload: ENABLED (%d files)\n", len(s.promptWatcher.GetWatchedFiles()))
	}
	if s.keyWatcher != nil {
		fmt.Println("API key rotation: ENABLED (Vault)")
	}
}
