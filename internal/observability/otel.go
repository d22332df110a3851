package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"placementpulse/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Manager owns the OpenTelemetry providers and the application metrics
type Manager struct {
	settings       Settings
	logger         *errors.Logger
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	metricsServer  *http.Server
	shutdownFuncs  []func(context.Context) error
}

// NewManager sets up tracing and metrics and installs them as the global
// providers. A disabled manager hands out no-op tracers and metrics.
func NewManager(ctx context.Context, s Settings, logger *errors.Logger) (*Manager, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	m := &Manager{settings: s, logger: logger, metrics: &Metrics{}}
	if !s.Enabled {
		return m, nil
	}

	res, err := m.newResource()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	if s.TracingEnabled {
		if err := m.initTracing(ctx, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if s.MetricsEnabled {
		if err := m.initMetrics(ctx, res); err != nil {
			_ = m.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Manager) newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.settings.ServiceName),
			semconv.ServiceVersion(m.settings.ServiceVersion),
			attribute.String("service.instance.id", m.serviceInstanceID()),
		),
	)
}

func (m *Manager) serviceInstanceID() string {
	if m.settings.ServiceInstance != "" {
		return m.settings.ServiceInstance
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return m.settings.ServiceName + "-1"
}

func (m *Manager) initTracing(ctx context.Context, res *resource.Resource) error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case m.settings.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case m.settings.OTLP.Enabled:
		exporter, err = m.newOTLPTraceExporter(ctx)
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(m.settings.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(ctx context.Context, res *resource.Resource) error {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if m.settings.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.settings.Interval))))
	}
	if m.settings.OTLP.Enabled {
		reader, err := m.newOTLPMetricsReader(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	if m.settings.Prometheus.Enabled {
		reader, mux, err := newPrometheusReader(m.settings.Prometheus)
		if err != nil {
			return err
		}
		opts = append(opts, sdkmetric.WithReader(reader))
		m.metricsServer = startPrometheusServer(mux, m.settings.Prometheus.Port, m.logger)
		m.shutdownFuncs = append(m.shutdownFuncs, m.metricsServer.Shutdown)
	}
	if len(opts) == 1 {
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewManualReader()))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(m.settings.ServiceName), m.settings.Custom)
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

func (m *Manager) newOTLPTraceExporter(ctx context.Context) (trace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(m.settings.OTLP.Endpoint)}
	if m.settings.OTLP.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(m.settings.OTLP.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(m.settings.OTLP.Headers))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (m *Manager) newOTLPMetricsReader(ctx context.Context) (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(m.settings.OTLP.Endpoint)}
	if m.settings.OTLP.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(m.settings.OTLP.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(m.settings.OTLP.Headers))
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.settings.Interval)), nil
}

// Metrics returns the application metrics. Never nil.
func (m *Manager) Metrics() *Metrics {
	if m == nil || m.metrics == nil {
		return &Metrics{}
	}
	return m.metrics
}

// HTTPMiddleware instruments handlers with otelhttp.
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if m == nil || !m.settings.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	opts := []otelhttp.Option{}
	if m.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(m.tracerProvider))
	}
	if m.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(m.meterProvider))
	}
	return otelhttp.NewMiddleware(m.settings.ServiceName, opts...)
}

// Tracer returns a tracer for the named component
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if m == nil || m.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every component, returning the first error.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var first error
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	m.shutdownFuncs = nil
	return first
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error                         { return nil }
