package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"placementpulse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	errs  []error
	text  string
	calls int
	parts int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	if len(contents) > 0 {
		f.parts = len(contents[0].Parts)
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func testOCRConfig() config.OCRConfig {
	return config.OCRConfig{
		Enabled:    true,
		Provider:   "gemini",
		Model:      "gemini-2.0-flash",
		APIKey:     "test",
		Timeout:    time.Second,
		MaxRetries: 2,
	}
}

func newTestTranscriber(gen contentGenerator, cfg config.OCRConfig) *GeminiTranscriber {
	tr := newGeminiTranscriber(gen, cfg, nil)
	tr.baseDelay = time.Millisecond
	return tr
}

func TestTranscribeSendsPromptAndImage(t *testing.T) {
	gen := &fakeGenerator{text: "  Jane Doe\nB.Tech 2020  "}
	tr := newTestTranscriber(gen, testOCRConfig())

	text, err := tr.Transcribe(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nB.Tech 2020", text)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 2, gen.parts)
	assert.Equal(t, config.DefaultOCRPrompt, tr.config.Prompt)
}

func TestTranscribeRetriesTransientErrors(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}, nil},
		text: "recovered",
	}
	tr := newTestTranscriber(gen, testOCRConfig())

	text, err := tr.Transcribe(context.Background(), []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, gen.calls)
}

func TestTranscribeStopsOnPermanentError(t *testing.T) {
	gen := &fakeGenerator{errs: []error{genai.APIError{Code: http.StatusUnauthorized, Status: "UNAUTHENTICATED"}}}
	tr := newTestTranscriber(gen, testOCRConfig())

	_, err := tr.Transcribe(context.Background(), []byte("img"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, err.Error(), "AI_SERVICE_FAILED")
}

func TestTranscribeHonoursCancellation(t *testing.T) {
	gen := &fakeGenerator{errs: []error{genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}}}
	tr := newTestTranscriber(gen, testOCRConfig())
	tr.baseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Transcribe(ctx, []byte("img"), "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"wrapped rate limited", fmt.Errorf("wrapped: %w", genai.APIError{Code: http.StatusTooManyRequests}), true},
		{"pointer unavailable", &genai.APIError{Code: http.StatusServiceUnavailable}, true},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"not found", fmt.Errorf("wrapped: %w", genai.APIError{Code: http.StatusNotFound}), false},
		{"googleapi gateway timeout", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusGatewayTimeout}), true},
		{"googleapi bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestBackoffIsCapped(t *testing.T) {
	tr := newGeminiTranscriber(&fakeGenerator{}, testOCRConfig(), nil)
	assert.GreaterOrEqual(t, tr.backoff(1), time.Second)
	assert.Less(t, tr.backoff(1), 1100*time.Millisecond)
	assert.Equal(t, maxBackoff, tr.backoff(10))
}

func TestCircuitBreakerStats(t *testing.T) {
	var disabled *CircuitBreaker
	assert.Equal(t, map[string]any{"enabled": false}, disabled.GetStats())
	assert.True(t, disabled.IsHealthy())

	cb := NewCircuitBreaker("OCR", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}, nil)
	require.NotNil(t, cb)

	stats := cb.GetStats()
	assert.Equal(t, "AI-OCR", stats["name"])
	assert.Equal(t, "closed", stats["state"])

	fail := func() (*genai.GenerateContentResponse, error) { return nil, errors.New("down") }
	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)
	assert.False(t, cb.IsHealthy())
}

func TestNewTranscriberDisabled(t *testing.T) {
	cfg := testOCRConfig()
	cfg.APIKey = ""
	tr, err := NewTranscriber(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, tr)

	cfg = testOCRConfig()
	cfg.Provider = "tesseract"
	_, err = NewTranscriber(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "Unsupported OCR provider: tesseract")
}

type stubTranscriber struct{ err error }

func (s stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "jane doe", nil
}

func (stubTranscriber) Stats() map[string]any { return map[string]any{"provider": "stub"} }

func TestInstrument(t *testing.T) {
	assert.Nil(t, Instrument(nil, func(context.Context, time.Duration, bool) {}))

	var outcomes []bool
	observe := func(_ context.Context, d time.Duration, ok bool) {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		outcomes = append(outcomes, ok)
	}

	tr := Instrument(stubTranscriber{}, observe)
	text, err := tr.Transcribe(context.Background(), []byte{1}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "jane doe", text)
	assert.Equal(t, "stub", tr.Stats()["provider"])

	_, err = Instrument(stubTranscriber{err: errors.New("quota")}, observe).Transcribe(context.Background(), nil, "image/png")
	assert.Error(t, err)
	assert.Equal(t, []bool{true, false}, outcomes)
}
