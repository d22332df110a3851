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
	"strings"
	"time"

	"placementpulse/internal/config"
	appErrors "placementpulse/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const maxBackoff = 30 * time.Second

// contentGenerator is the slice of the genai Models API used for OCR.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTranscriber transcribes resume images with Google Gemini
type GeminiTranscriber struct {
	models         contentGenerator
	config         config.OCRConfig
	circuitBreaker *CircuitBreaker
	logger         *appErrors.Logger
	baseDelay      time.Duration
}

var _ Transcriber = (*GeminiTranscriber)(nil)

// NewGeminiTranscriber creates a Gemini-backed transcriber
func NewGeminiTranscriber(ctx context.Context, cfg config.OCRConfig, logger *appErrors.Logger) (*GeminiTranscriber, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return newGeminiTranscriber(client.Models, cfg, logger), nil
}

func newGeminiTranscriber(models contentGenerator, cfg config.OCRConfig, logger *appErrors.Logger) *GeminiTranscriber {
	if logger == nil {
		logger = appErrors.NewNopLogger()
	}
	if cfg.Prompt == "" {
		cfg.Prompt = config.DefaultOCRPrompt
	}
	return &GeminiTranscriber{
		models:         models,
		config:         cfg,
		circuitBreaker: NewCircuitBreaker("OCR", cfg.CircuitBreaker, logger),
		logger:         logger,
		baseDelay:      time.Second,
	}
}

// Transcribe sends the image to the model and returns the transcribed text
func (g *GeminiTranscriber) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	tracer := otel.Tracer("placementpulse.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.transcribe")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("input.mime_type", mimeType),
		attribute.Int("input.bytes", len(data)),
	)

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(g.config.Prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}
	genConfig := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, "transcribe", func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(ctx, g.config.Model, contents, genConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed, "Failed to transcribe resume image", err)
	}

	text := strings.TrimSpace(result.Text())
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.chars", len(text)),
	)
	return text, nil
}

// Stats reports the circuit breaker state
func (g *GeminiTranscriber) Stats() map[string]any {
	return map[string]any{
		"provider":        "gemini",
		"model":           g.config.Model,
		"circuit_breaker": g.circuitBreaker.GetStats(),
		"healthy":         g.circuitBreaker.IsHealthy(),
	}
}

// executeWithRetry executes a model call with retry logic and exponential backoff
func (g *GeminiTranscriber) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	maxRetries := max(g.config.MaxRetries, 0)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts", "operation", operation)
	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// backoff returns the delay before the given retry attempt, with up to 10% jitter
func (g *GeminiTranscriber) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.baseDelay
	jitter := time.Duration(0)
	if limit := int64(float64(baseDelay) * 0.1); limit > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(limit)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// The genai client reports HTTP failures as APIError values.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retryableStatus(apiErrPtr.Code)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
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
