// Package tracing provides distributed tracing capabilities using OpenTelemetry
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
)

const (
	tracerName = "github.com/developer-mesh/gitee-mcp"

	// Attribute keys
	AttrToolName   = "tool.name"
	AttrSessionID  = "session.id"
	AttrRequestID  = "request.id"
	AttrGiteeURL   = "gitee.url"
	AttrHTTPMethod = "http.method"
	AttrHTTPStatus = "http.status_code"
	AttrErrorKind  = "error.kind"
)

// Config holds tracing configuration
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string        // OTLP gRPC endpoint, e.g. "localhost:4317"
	OTLPInsecure   bool          // Whether to use insecure connection
	ZipkinEndpoint string        // Takes priority over OTLP when set
	SamplingRate   float64       // Sampling rate (0.0 to 1.0)
	ExportTimeout  time.Duration // Timeout for exporting traces
}

// DefaultConfig returns default tracing configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:        false,
		ServiceName:    "gitee-mcp",
		ServiceVersion: "dev",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		OTLPInsecure:   true,
		SamplingRate:   1.0,
		ExportTimeout:  30 * time.Second,
	}
}

// TracerProvider manages OpenTelemetry tracing. A nil *TracerProvider is
// valid and starts no spans.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	config   *Config
}

// NewTracerProvider creates a tracer provider. Extra options are appended
// to the SDK options, which lets tests attach span recorders.
func NewTracerProvider(config *Config, extra ...sdktrace.TracerProviderOption) (*TracerProvider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if !config.Enabled {
		return &TracerProvider{
			tracer: noop.NewTracerProvider().Tracer(tracerName),
			config: config,
		}, nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var spanExporter sdktrace.SpanExporter

	// Priority: Zipkin > OTLP
	if config.ZipkinEndpoint != "" {
		spanExporter, err = zipkin.New(config.ZipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create Zipkin exporter: %w", err)
		}
	} else if config.OTLPEndpoint != "" {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
		}
		if config.ExportTimeout > 0 {
			opts = append(opts, otlptracegrpc.WithTimeout(config.ExportTimeout))
		}
		if config.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}

		spanExporter, err = otlptracegrpc.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SamplingRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	}
	if spanExporter != nil {
		opts = append(opts, sdktrace.WithBatcher(spanExporter))
	}
	opts = append(opts, extra...)

	provider := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(tracerName),
		config:   config,
	}, nil
}

// Shutdown flushes and stops the exporter
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp == nil || tp.provider == nil {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

// IsEnabled returns whether tracing is enabled
func (tp *TracerProvider) IsEnabled() bool {
	return tp != nil && tp.config.Enabled
}

// StartSpan starts a new span with the given name and options
func (tp *TracerProvider) StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !tp.IsEnabled() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tp.tracer.Start(ctx, spanName, opts...)
}

// StartToolSpan starts a server span for one tool invocation
func (tp *TracerProvider) StartToolSpan(ctx context.Context, toolName, sessionID string) (context.Context, trace.Span) {
	ctx, span := tp.StartSpan(ctx, "tool.execute."+toolName, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String(AttrToolName, toolName),
		attribute.String(AttrSessionID, sessionID),
	)
	return ctx, span
}

// StartGiteeRequestSpan starts a client span for one outbound API call
func (tp *TracerProvider) StartGiteeRequestSpan(ctx context.Context, method, url string) (context.Context, trace.Span) {
	ctx, span := tp.StartSpan(ctx, "gitee."+method, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrGiteeURL, url),
	)
	return ctx, span
}

// RecordHTTPStatus records the response status; only 5xx marks the span failed
func RecordHTTPStatus(span trace.Span, statusCode int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatus, statusCode))
	if statusCode >= 500 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
	}
}

// RecordError records err on span, tagging the classified kind when known
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	if e, ok := apierrors.As(err); ok {
		span.SetAttributes(attribute.String(AttrErrorKind, e.Kind.String()))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
