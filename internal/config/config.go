package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (HIREFORGE_AI_APIKEY, then GEMINI_API_KEY / API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Prompts       PromptConfig        `mapstructure:"prompts"`
	Server        ServerConfig        `mapstructure:"server"`
	Session       SessionConfig       `mapstructure:"session"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	loaded *LoadedPrompts
}

// AIConfig holds generator configuration shared by every task
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	SpeechModel       string        `mapstructure:"speechModel"`
	Voice             string        `mapstructure:"voice"`
	Language          string        `mapstructure:"language"`
	Timeout           time.Duration `mapstructure:"timeout"`
	APIKey            string        `mapstructure:"apiKey"`
	MaxRetries        int           `mapstructure:"maxRetries"`
	Temperature       float32       `mapstructure:"temperature"`
	ThinkingBudget    int32         `mapstructure:"thinkingBudget"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute"`
	StrictContract    bool          `mapstructure:"strictContract"`

	// Task-specific overrides
	JobAssets         OperationAIConfig `mapstructure:"jobAssets"`
	CandidateProfiles OperationAIConfig `mapstructure:"candidateProfiles"`
	AdvancedAssets    OperationAIConfig `mapstructure:"advancedAssets"`
	Speech            OperationAIConfig `mapstructure:"speech"`
	Chat              OperationAIConfig `mapstructure:"chat"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds generator configuration for one task.
// Nil pointers and empty strings fall back to AIConfig.
type OperationAIConfig struct {
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Voice          string               `mapstructure:"voice"`
	Language       string               `mapstructure:"language"`
	Timeout        *time.Duration       `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	MaxRetries     *int                 `mapstructure:"maxRetries"`
	Temperature    *float32             `mapstructure:"temperature"`
	ThinkingBudget *int32               `mapstructure:"thinkingBudget"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds prompt template overrides. Inline text wins over the
// built-in template; a file path wins over inline text.
type PromptConfig struct {
	SystemPrompts SystemPrompts `mapstructure:"systemPrompts"`
	UserPrompts   UserPrompts   `mapstructure:"userPrompts"`
}

// SystemPrompts contains system-level instruction templates
type SystemPrompts struct {
	JobAssets             string `mapstructure:"jobAssets"`
	JobAssetsFile         string `mapstructure:"jobAssetsFile"`
	CandidateProfiles     string `mapstructure:"candidateProfiles"`
	CandidateProfilesFile string `mapstructure:"candidateProfilesFile"`
	AdvancedAssets        string `mapstructure:"advancedAssets"`
	AdvancedAssetsFile    string `mapstructure:"advancedAssetsFile"`
	Chat                  string `mapstructure:"chat"`
	ChatFile              string `mapstructure:"chatFile"`
}

// UserPrompts contains user-level prompt templates
type UserPrompts struct {
	JobAssets             string `mapstructure:"jobAssets"`
	JobAssetsFile         string `mapstructure:"jobAssetsFile"`
	CandidateProfiles     string `mapstructure:"candidateProfiles"`
	CandidateProfilesFile string `mapstructure:"candidateProfilesFile"`
	AdvancedAssets        string `mapstructure:"advancedAssets"`
	AdvancedAssetsFile    string `mapstructure:"advancedAssetsFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`

	// Hot reload of prompt template files
	WatchPrompts  bool          `mapstructure:"watchPrompts"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Mode       string `mapstructure:"mode"`       // "disabled" or "server"
	CertFile   string `mapstructure:"certFile"`   // Server certificate file (PEM)
	KeyFile    string `mapstructure:"keyFile"`    // Server private key file (PEM)
	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int  `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int  `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
}

// WebSocketConfig holds chat streaming transport configuration
type WebSocketConfig struct {
	AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	PingInterval   time.Duration `mapstructure:"pingInterval"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	MaxMessageSize int64         `mapstructure:"maxMessageSize"`
}

// SessionConfig bounds the in-memory session registry used by the server
type SessionConfig struct {
	MaxSessions int           `mapstructure:"maxSessions"`
	IdleTTL     time.Duration `mapstructure:"idleTTL"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
	MaxImageSize     int64    `mapstructure:"maxImageSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	Generation      GenerationMetricsConfig     `mapstructure:"generation"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// GenerationMetricsConfig holds generator call metrics configuration
type GenerationMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackContentSizes bool `mapstructure:"trackContentSizes"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
	TrackSessions   bool `mapstructure:"trackSessions"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from .env, environment variables and a config file
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file path. An empty
// path searches the standard locations.
func LoadConfigFile(path string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	if err := godotenv.Load(); err == nil {
		log.Println("[CONFIG] Loaded environment overrides from .env")
	}

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("HIREFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("ai.model", "HIREFORGE_AI_MODEL", "GEMINI_MODEL")
	log.Println("[CONFIG] Configured environment variable handling with prefix 'HIREFORGE'")

	if path != "" {
		v.SetConfigFile(path)
		log.Printf("[CONFIG] Using config file from flag: %s", path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/hireforge/")
		v.AddConfigPath("$HOME/.hireforge")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/hireforge/, $HOME/.hireforge, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}

	if err := config.LoadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. A missing API key is not a
// load error: it is reported when a generation client is constructed, so
// commands that never call the generator still work.
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI maxRetries must not be negative")
	}

	if c.AI.ThinkingBudget < 0 {
		return fmt.Errorf("AI thinkingBudget must not be negative")
	}

	if strings.TrimSpace(c.AI.Language) == "" {
		return fmt.Errorf("AI language is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("session maxSessions must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.Mode {
	case "", "disabled":
		return nil
	case "server":
		if tls.CertFile == "" || tls.KeyFile == "" {
			return fmt.Errorf("TLS certificate and key files are required for server mode")
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", tls.Mode)
	}

	switch tls.MinVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}

	return nil
}
