package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/errors"
	"placementpulse/internal/extract"
	"placementpulse/internal/observability"
	"placementpulse/internal/predictor"
	"placementpulse/internal/types"
)

// envelopeOverhead is added to the file size limit to allow for multipart
// boundaries and headers around the uploaded resume.
const envelopeOverhead = 64 * 1024

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TrainResponse is returned when a retraining run is accepted
type TrainResponse struct {
	Message string            `json:"message"`
	Status  types.ModelStatus `json:"status"`
}

// ResumeAnalyzer analyzes an uploaded resume
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, doc extract.Document) (types.AnalysisResult, error)
}

// PackagePredictor trains and serves the placement package model
type PackagePredictor interface {
	Status() types.ModelStatus
	Ready() bool
	Train(ctx context.Context, loader predictor.Loader) (types.ModelStatus, error)
	Predict(profile types.StudentProfile) (types.PackagePrediction, error)
}

// OCRReporter exposes OCR health for the health endpoint
type OCRReporter interface {
	OCREnabled() bool
	OCRStats() map[string]any
}

// Dependencies are the services the HTTP handlers call into
type Dependencies struct {
	Analyzer      ResumeAnalyzer
	Predictor     PackagePredictor
	Dataset       predictor.Loader
	OCR           OCRReporter
	Observability *observability.Manager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	TLSConfig config.TLSConfig

	apiKeys *apiKeySet

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxFileSize bounds the resume itself; MaxRequestSize bounds the body
	MaxFileSize    int64
	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Logger *errors.Logger

	analyzer  ResumeAnalyzer
	predictor PackagePredictor
	dataset   predictor.Loader
	ocr       OCRReporter
	om        *observability.Manager

	vaultWatcher *VaultWatcher

	// baseCtx parents background training runs so shutdown can cancel them
	baseCtx   context.Context
	cancel    context.CancelFunc
	training  atomic.Bool
	trainings sync.WaitGroup
	startedAt time.Time
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host         string
	Port         string
	Version      string
	TLSConfig    config.TLSConfig
	APIKeys      []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxFileSize  int64
	RateLimit    *config.RateLimitConfig
}

// ConfigFromApp builds a ServerConfig from the application configuration
func ConfigFromApp(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Version:      version,
		TLSConfig:    cfg.Server.TLS,
		APIKeys:      cfg.Server.APIKeys,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		MaxFileSize:  cfg.App.MaxFileSize,
		RateLimit:    &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(cfg ServerConfig, deps Dependencies, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, cfg.RateLimit.Window, logger)
	}

	maxFileSize := cfg.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}
	dataset := deps.Dataset
	if dataset == nil {
		dataset = predictor.FallbackLoader{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		TLSConfig:      cfg.TLSConfig,
		apiKeys:        newAPIKeySet(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxFileSize:    maxFileSize,
		MaxRequestSize: maxFileSize + envelopeOverhead,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		analyzer:       deps.Analyzer,
		predictor:      deps.Predictor,
		dataset:        dataset,
		ocr:            deps.OCR,
		om:             deps.Observability,
		baseCtx:        ctx,
		cancel:         cancel,
		startedAt:      time.Now(),
	}
}

// apiKeySet is the set of accepted API keys. It can be replaced while
// serving when keys rotate.
type apiKeySet struct {
	mu   sync.RWMutex
	keys map[string]bool
}

func newAPIKeySet(keys []string) *apiKeySet {
	s := &apiKeySet{}
	s.replace(keys)
	return s
}

func (s *apiKeySet) replace(keys []string) {
	m := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			m[key] = true
		}
	}
	s.mu.Lock()
	s.keys = m
	s.mu.Unlock()
}

func (s *apiKeySet) contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

func (s *apiKeySet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// SetAPIKeys replaces the accepted API keys. An empty list is ignored so a
// bad rotation cannot open the API.
func (s *Server) SetAPIKeys(keys []string) {
	before := s.apiKeys.len()
	next := newAPIKeySet(keys)
	if next.len() == 0 {
		s.Logger.Warn("Ignoring empty API key rotation", "current_keys", before)
		return
	}
	s.apiKeys.replace(keys)
	s.Logger.Info("API keys rotated", "previous_keys", before, "keys", next.len())
}
