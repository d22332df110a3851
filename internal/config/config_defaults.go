package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultMaxFileSize is the largest resume accepted for analysis.
const DefaultMaxFileSize = 5 * 1024 * 1024

// DefaultOCRPrompt asks the model for a plain transcription of a resume image.
const DefaultOCRPrompt = `Transcribe all text visible in this resume image.
Preserve the reading order and keep section headings on their own lines.
Return only the transcribed text with no commentary.`

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", DefaultMaxFileSize)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second) // image OCR can be slow
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// OCR Configuration
	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.provider", "gemini")
	v.SetDefault("ocr.model", "gemini-2.0-flash")
	v.SetDefault("ocr.apiKey", "")
	v.SetDefault("ocr.timeout", 60*time.Second)
	v.SetDefault("ocr.maxRetries", 3)
	v.SetDefault("ocr.prompt", "")
	v.SetDefault("ocr.promptFile", "")
	v.SetDefault("ocr.circuitBreaker.enabled", true)
	v.SetDefault("ocr.circuitBreaker.maxRequests", 3)
	v.SetDefault("ocr.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ocr.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ocr.circuitBreaker.minRequests", 3)
	v.SetDefault("ocr.circuitBreaker.failureThreshold", 0.6)

	// Analysis Configuration
	v.SetDefault("analysis.rawTextLimit", 2000)
	v.SetDefault("analysis.topSkills", 10)
	v.SetDefault("analysis.preferredLocations", []string{"Bengaluru", "Hyderabad", "Pune", "Mumbai", "Delhi", "Chennai"})

	// Predictor Configuration
	v.SetDefault("predictor.epochs", 100)
	v.SetDefault("predictor.batchSize", 32)
	v.SetDefault("predictor.learningRate", 0.01)
	v.SetDefault("predictor.validationSplit", 0.2)
	v.SetDefault("predictor.seed", 42)
	v.SetDefault("predictor.datasetFile", "")
	v.SetDefault("predictor.watchDataset", false)
	v.SetDefault("predictor.debounceDelay", time.Second)
	v.SetDefault("predictor.trainOnStart", true)
	v.SetDefault("predictor.database.url", "")
	v.SetDefault("predictor.database.table", "placement_records")

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.pollInterval", time.Duration(0))
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.databaseUrl", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "placementpulse")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.analysis.enabled", true)
	v.SetDefault("observability.customMetrics.analysis.trackScores", true)
	v.SetDefault("observability.customMetrics.analysis.trackOCRTiming", true)
	v.SetDefault("observability.customMetrics.predictor.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
