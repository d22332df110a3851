package ai

import (
	"context"
	"fmt"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/errors"
)

// Transcriber turns a document image into plain text
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
	Stats() map[string]any
}

// NewTranscriber builds the configured OCR provider.
// It returns nil, nil when OCR is disabled or has no API key.
func NewTranscriber(ctx context.Context, cfg config.OCRConfig, logger *errors.Logger) (Transcriber, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if !cfg.Enabled || cfg.APIKey == "" {
		logger.Debug("OCR disabled, image resumes will not be transcribed",
			"enabled", cfg.Enabled,
			"has_api_key", cfg.APIKey != "")
		return nil, nil
	}

	logger.Debug("Initializing OCR transcriber",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	switch cfg.Provider {
	case "gemini", "":
		t, err := NewGeminiTranscriber(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported OCR provider: %s", cfg.Provider), nil)
	}
}

// ObserveFunc receives the duration and outcome of one transcription
type ObserveFunc func(ctx context.Context, d time.Duration, ok bool)

type observedTranscriber struct {
	Transcriber
	observe ObserveFunc
}

// Instrument reports every Transcribe call on t to observe.
// A nil t stays nil so OCR remains disabled.
func Instrument(t Transcriber, observe ObserveFunc) Transcriber {
	if t == nil || observe == nil {
		return t
	}
	return &observedTranscriber{Transcriber: t, observe: observe}
}

func (o *observedTranscriber) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	start := time.Now()
	text, err := o.Transcriber.Transcribe(ctx, data, mimeType)
	o.observe(ctx, time.Since(start), err == nil)
	return text, err
}
