package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyAIKeyFallbacks()
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyAIKeyFallbacks reads the generator key from the conventional
// environment variables when none is configured.
func (c *Config) applyAIKeyFallbacks() {
	if c.AI.APIKey != "" {
		return
	}
	for _, name := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			c.AI.APIKey = key
			log.Printf("[CONFIG] Using AI API key from %s", name)
			return
		}
	}
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) > 0 {
		c.Server.APIKeys = splitKeys(strings.Join(c.Server.APIKeys, ","))
	}
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("HIREFORGE_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitKeys(apiKeysEnv)
		}
	}
}

func splitKeys(raw string) []string {
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "" {
		c.Server.TLS.Mode = "disabled"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"HIREFORGE_AI_APIKEY",
		"HIREFORGE_AI_MODEL",
		"HIREFORGE_AI_LANGUAGE",
		"HIREFORGE_SERVER_PORT",
		"HIREFORGE_SERVER_HOST",
		"HIREFORGE_APP_LOGLEVEL",
		"HIREFORGE_VAULT_ENABLED",
		"GEMINI_API_KEY",
		"API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	log.Printf("[CONFIG] Speech Model: %s (voice %s)", c.AI.SpeechModel, c.AI.Voice)
	log.Printf("[CONFIG] Output Language: %s", c.AI.Language)
	log.Printf("[CONFIG] Strict Contract: %t", c.AI.StrictContract)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] === Task-Specific AI Configurations ===")
	for task, op := range c.GetOperationConfigs() {
		log.Printf("[CONFIG] %s - Model: %s, Thinking budget: %d", task, op.Model, *op.ThinkingBudget)
	}

	log.Println("[CONFIG] =====================================")
}
