// AngelaMos | 2026
// telemetry.go

package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/carterperez-dev/debt-manager/internal/config"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

const (
	tracerName        = "github.com/carterperez-dev/debt-manager"
	defaultSampleRate = 0.1
	exportTimeout     = 5 * time.Second
)

// Span attributes identifying who a unit of work ran for.
const (
	AttrBusinessID = attribute.Key("debt_manager.business_id")
	AttrUserID     = attribute.Key("debt_manager.user_id")
	AttrRole       = attribute.Key("debt_manager.role")
)

type Telemetry struct {
	provider *sdktrace.TracerProvider
}

// NewTelemetry installs a batching OTLP exporter as the global tracer
// provider. Spans started through StartSpan are no-ops until then.
func NewTelemetry(
	ctx context.Context,
	otelCfg config.OtelConfig,
	appCfg config.AppConfig,
) (*Telemetry, error) {
	exporter, err := otlptracegrpc.New(ctx, exporterOptions(otelCfg)...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(otelCfg.ServiceName),
			semconv.ServiceVersion(appCfg.Version),
			semconv.DeploymentEnvironment(appCfg.Environment),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(exportTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(otelCfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Telemetry{provider: tp}, nil
}

func exporterOptions(cfg config.OtelConfig) []otlptracegrpc.Option {
	creds := credentials.NewClientTLSFromCert(nil, "")
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}
	return []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(exportTimeout),
		otlptracegrpc.WithTLSCredentials(creds),
	}
}

// sampler honours the caller's decision and samples new traces at rate,
// falling back to the default for values outside (0, 1].
func sampler(rate float64) sdktrace.Sampler {
	if rate <= 0 || rate > 1 {
		rate = defaultSampleRate
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Shutdown flushes buffered spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*exportTimeout)
	defer cancel()

	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}

// ActorAttributes describes actor, leaving out fields not yet known.
func ActorAttributes(actor role.Actor) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if actor.BusinessID != "" {
		attrs = append(attrs, AttrBusinessID.String(actor.BusinessID))
	}
	if actor.UserID != "" {
		attrs = append(attrs, AttrUserID.String(actor.UserID))
	}
	if actor.Role != "" {
		attrs = append(attrs, AttrRole.String(string(actor.Role)))
	}
	return attrs
}

// StartSpan starts a child span tagged with the acting member.
func StartSpan(
	ctx context.Context,
	name string,
	actor role.Actor,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithAttributes(ActorAttributes(actor)...),
		trace.WithAttributes(attrs...),
	)
}

// AnnotateActor tags the span already in ctx.
func AnnotateActor(ctx context.Context, actor role.Actor) {
	trace.SpanFromContext(ctx).SetAttributes(ActorAttributes(actor)...)
}

func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
