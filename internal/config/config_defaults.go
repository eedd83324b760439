package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-3-pro-preview")
	v.SetDefault("ai.speechModel", "gemini-2.5-flash-preview-tts")
	v.SetDefault("ai.voice", "Kore")
	v.SetDefault("ai.language", "he")
	v.SetDefault("ai.timeout", 180*time.Second) // Deep thinking budgets make calls slow
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.0) // 0 keeps the model default
	v.SetDefault("ai.thinkingBudget", 32768)
	v.SetDefault("ai.requestsPerMinute", 0) // 0 disables outbound limiting
	v.SetDefault("ai.strictContract", true)

	// Speech has no reasoning step and answers quickly
	v.SetDefault("ai.speech.thinkingBudget", 0)
	v.SetDefault("ai.speech.timeout", 60*time.Second)
	v.SetDefault("ai.speech.maxRetries", 2)

	// Chat streams are not retried once text has been delivered
	v.SetDefault("ai.chat.maxRetries", 0)

	for _, op := range []string{"jobAssets", "candidateProfiles", "advancedAssets", "speech", "chat"} {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 300*time.Second) // Raised at startup to cover the generation retry budget
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 12*1024*1024) // Room for an inline image
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.websocket.allowedOrigins", []string{})
	v.SetDefault("server.websocket.pingInterval", 30*time.Second)
	v.SetDefault("server.websocket.writeTimeout", 10*time.Second)
	v.SetDefault("server.websocket.maxMessageSize", 64*1024)
	v.SetDefault("server.watchPrompts", true)
	v.SetDefault("server.debounceDelay", time.Second)

	// Session Configuration
	v.SetDefault("session.maxSessions", 1000)
	v.SetDefault("session.idleTTL", 2*time.Hour)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024)    // 1MB of notes
	v.SetDefault("app.maxImageSize", 8*1024*1024) // 8MB inline image

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.pollInterval", 0)
	v.SetDefault("vault.secrets.serverKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	for _, task := range []string{"jobAssets", "candidateProfiles", "advancedAssets", "speech", "chat"} {
		v.SetDefault("vault.secrets.tasks."+task, "")
	}

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "hireforge")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.generation.enabled", true)
	v.SetDefault("observability.customMetrics.generation.trackDuration", true)
	v.SetDefault("observability.customMetrics.generation.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackSessions", true)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
