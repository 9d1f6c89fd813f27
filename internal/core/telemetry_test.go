// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/debt-manager/internal/role"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]string {
	m := make(map[attribute.Key]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value.Emit()
	}
	return m
}

func TestStartSpanTagsActor(t *testing.T) {
	rec := recordSpans(t)

	actor := role.Actor{UserID: "u-1", BusinessID: "biz-1", Role: role.Salesperson}
	ctx, span := StartSpan(context.Background(), "debts.list", actor,
		attribute.Int("debts.count", 4),
	)
	SetSpanError(ctx, errors.New("db down"))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	got := attrMap(ended[0].Attributes())
	want := map[attribute.Key]string{
		AttrBusinessID: "biz-1",
		AttrUserID:     "u-1",
		AttrRole:       "salesperson",
		"debts.count":  "4",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want error", ended[0].Status().Code)
	}
}

func TestActorAttributesSkipsUnknownFields(t *testing.T) {
	got := attrMap(ActorAttributes(role.Actor{UserID: "owner-1", Role: role.Owner}))

	if _, ok := got[AttrBusinessID]; ok {
		t.Error("business id set for an owner without a business")
	}
	if got[AttrUserID] != "owner-1" || got[AttrRole] != "owner" {
		t.Errorf("attributes = %v", got)
	}
}

func TestTraceIDFromContext(t *testing.T) {
	recordSpans(t)

	if id := TraceIDFromContext(context.Background()); id != "" {
		t.Errorf("trace id without span = %q", id)
	}

	ctx, span := StartSpan(context.Background(), "op", role.Actor{})
	defer span.End()
	AnnotateActor(ctx, role.Actor{BusinessID: "biz-2"})

	if id := TraceIDFromContext(ctx); id != span.SpanContext().TraceID().String() {
		t.Errorf("trace id = %q", id)
	}
}
