package observability

import (
	"context"
	"fmt"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. The zero value records nothing.
type Metrics struct {
	AnalysesTotal      metric.Int64Counter
	FallbacksTotal     metric.Int64Counter
	ExtractionFailures metric.Int64Counter
	ResumeScore        metric.Int64Histogram
	OCRDuration        metric.Float64Histogram

	PredictionsTotal metric.Int64Counter
	TrainingsTotal   metric.Int64Counter

	RateLimitHits metric.Int64Counter

	custom config.CustomMetricsConfig
}

func newMetrics(meter metric.Meter, custom config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{custom: custom}
	var err error

	if custom.Analysis.Enabled {
		if m.AnalysesTotal, err = meter.Int64Counter("placementpulse_analyses_total",
			metric.WithDescription("Total number of resume analyses")); err != nil {
			return nil, fmt.Errorf("failed to create analyses metric: %w", err)
		}
		if m.FallbacksTotal, err = meter.Int64Counter("placementpulse_fallbacks_total",
			metric.WithDescription("Total number of analyses answered with the fallback result")); err != nil {
			return nil, fmt.Errorf("failed to create fallbacks metric: %w", err)
		}
		if m.ExtractionFailures, err = meter.Int64Counter("placementpulse_extraction_failures_total",
			metric.WithDescription("Total number of failed text extractions")); err != nil {
			return nil, fmt.Errorf("failed to create extraction failures metric: %w", err)
		}
		if m.ResumeScore, err = meter.Int64Histogram("placementpulse_resume_score",
			metric.WithDescription("Distribution of overall resume scores"),
			metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)); err != nil {
			return nil, fmt.Errorf("failed to create resume score metric: %w", err)
		}
		if m.OCRDuration, err = meter.Float64Histogram("placementpulse_ocr_duration_seconds",
			metric.WithDescription("Time spent transcribing image resumes"),
			metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("failed to create OCR duration metric: %w", err)
		}
	}

	if custom.Predictor.Enabled {
		if m.PredictionsTotal, err = meter.Int64Counter("placementpulse_predictions_total",
			metric.WithDescription("Total number of package predictions")); err != nil {
			return nil, fmt.Errorf("failed to create predictions metric: %w", err)
		}
		if m.TrainingsTotal, err = meter.Int64Counter("placementpulse_trainings_total",
			metric.WithDescription("Total number of predictor trainings")); err != nil {
			return nil, fmt.Errorf("failed to create trainings metric: %w", err)
		}
	}

	if custom.Infrastructure.Enabled && custom.Infrastructure.TrackRateLimits {
		if m.RateLimitHits, err = meter.Int64Counter("placementpulse_rate_limit_hits_total",
			metric.WithDescription("Total number of rate limited requests")); err != nil {
			return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
		}
	}
	return m, nil
}

// RecordAnalysis records the outcome of one analysis request.
func (m *Metrics) RecordAnalysis(ctx context.Context, result types.AnalysisResult, err error) {
	if m == nil || m.AnalysesTotal == nil {
		return
	}
	source := result.Source
	if err != nil {
		source = "error"
	}
	m.AnalysesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
		attribute.String("source", source),
	))
	if err != nil {
		return
	}
	if result.IsFallback() {
		m.FallbacksTotal.Add(ctx, 1)
	}
	if ex := result.Extraction; ex != nil && !ex.OK {
		m.ExtractionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("method", ex.Method)))
	}
	if m.custom.Analysis.TrackScores && !result.IsFallback() {
		m.ResumeScore.Record(ctx, int64(result.OverallScore))
	}
}

// RecordOCR records how long an image transcription took.
func (m *Metrics) RecordOCR(ctx context.Context, d time.Duration, ok bool) {
	if m == nil || m.OCRDuration == nil || !m.custom.Analysis.TrackOCRTiming {
		return
	}
	m.OCRDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", ok)))
}

// RecordPrediction records one prediction request.
func (m *Metrics) RecordPrediction(ctx context.Context, err error) {
	if m == nil || m.PredictionsTotal == nil {
		return
	}
	m.PredictionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
}

// RecordTraining records one training run.
func (m *Metrics) RecordTraining(ctx context.Context, status types.ModelStatus, err error) {
	if m == nil || m.TrainingsTotal == nil {
		return
	}
	m.TrainingsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
		attribute.String("source", status.DatasetSource),
	))
}

// RecordRateLimitHit records a rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attrs ...attribute.KeyValue) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}
