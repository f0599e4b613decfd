package tracing

import (
	"context"
	"errors"
	"testing"

	obscontext "github.com/smallbiznis/salesdash/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartStageRecordsRunAndError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := obscontext.WithRunID(context.Background(), "01JNQ0000000000000000000AA")
	_, end := StartStage(ctx, "facts")
	end(errors.New("flush fact batch 2: boom"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "import facts" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	if span.Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", span.Status().Code)
	}
	found := false
	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("import.run_id") && attr.Value.AsString() == "01JNQ0000000000000000000AA" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected run id attribute")
	}
}
