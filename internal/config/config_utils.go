package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyOCRKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("PLACEMENTPULSE_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

// applyOCRKeyFallbacks picks up the conventional Gemini environment variable
func (c *Config) applyOCRKeyFallbacks() {
	if c.OCR.APIKey == "" {
		c.OCR.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
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

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadOCRPrompt resolves the OCR prompt from file, inline config or the built-in default
func (c *Config) loadOCRPrompt() error {
	if c.OCR.PromptFile != "" {
		content, err := loadPromptFromFile(c.OCR.PromptFile)
		if err != nil {
			return err
		}
		c.OCR.Prompt = content
		return nil
	}

	if strings.TrimSpace(c.OCR.Prompt) == "" {
		c.OCR.Prompt = DefaultOCRPrompt
		log.Println("[CONFIG] Using built-in OCR prompt")
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file, rejecting missing or empty files
func loadPromptFromFile(filePath string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for prompt file '%s': %w", filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("prompt file not found: %s", absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file '%s': %w", absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("prompt file '%s' is empty", absPath)
	}

	log.Printf("[CONFIG] Successfully loaded OCR prompt from file: %s (%d characters)", absPath, len(trimmed))
	return trimmed, nil
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
		"PLACEMENTPULSE_OCR_APIKEY",
		"PLACEMENTPULSE_OCR_MODEL",
		"PLACEMENTPULSE_SERVER_PORT",
		"PLACEMENTPULSE_SERVER_HOST",
		"PLACEMENTPULSE_APP_LOGLEVEL",
		"PLACEMENTPULSE_PREDICTOR_DATASETFILE",
		"PLACEMENTPULSE_PREDICTOR_DATABASE_URL",
		"PLACEMENTPULSE_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if isSensitiveEnv(envVar) {
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
	log.Printf("[CONFIG] OCR Enabled: %t", c.OCR.Enabled)
	log.Printf("[CONFIG] OCR Model: %s", c.OCR.Model)
	if c.OCR.APIKey != "" {
		log.Println("[CONFIG] OCR API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] OCR API Key: ***NOT SET*** (image resumes will not be transcribed)")
	}
	log.Printf("[CONFIG] Max File Size: %d bytes", c.App.MaxFileSize)
	log.Printf("[CONFIG] Predictor Dataset File: %s", valueOrNone(c.Predictor.DatasetFile))
	if c.Predictor.Database.URL != "" {
		log.Println("[CONFIG] Predictor Database: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] Predictor Database: ***NOT SET***")
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}

func isSensitiveEnv(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "key") || strings.Contains(lower, "url")
}

func valueOrNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
