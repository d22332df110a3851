package observability

import (
	"time"

	"placementpulse/internal/config"
)

// Settings is the resolved observability setup for one process
type Settings struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	ConsoleOutput   bool
	TracingEnabled  bool
	SampleRate      float64
	MetricsEnabled  bool
	Interval        time.Duration
	Prometheus      PrometheusSettings
	OTLP            config.OTLPConfig
	Custom          config.CustomMetricsConfig
}

// SettingsFromConfig resolves Settings, falling back to console-friendly
// defaults when cfg is nil.
func SettingsFromConfig(cfg *config.Config, version string) Settings {
	if cfg == nil {
		return Settings{
			ServiceName:    "placementpulse",
			ServiceVersion: version,
			Enabled:        true,
			TracingEnabled: true,
			SampleRate:     1.0,
			MetricsEnabled: true,
			Interval:       15 * time.Second,
			Custom: config.CustomMetricsConfig{
				Analysis:       config.AnalysisMetricsConfig{Enabled: true, TrackScores: true, TrackOCRTiming: true},
				Predictor:      config.PredictorMetricsConfig{Enabled: true},
				Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true},
			},
		}
	}

	obs := cfg.Observability
	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	sampleRate := obs.Tracing.SampleRate
	if sampleRate <= 0 {
		sampleRate = obs.SampleRate
	}
	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return Settings{
		ServiceName:     obs.ServiceName,
		ServiceVersion:  serviceVersion,
		ServiceInstance: obs.ServiceInstance,
		Enabled:         obs.Enabled,
		ConsoleOutput:   obs.ConsoleOutput,
		TracingEnabled:  obs.Tracing.Enabled,
		SampleRate:      sampleRate,
		MetricsEnabled:  obs.Metrics.Enabled,
		Interval:        interval,
		Prometheus: PrometheusSettings{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP:   obs.OTLP,
		Custom: obs.CustomMetrics,
	}
}
