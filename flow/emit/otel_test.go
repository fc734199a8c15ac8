package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer(t *testing.T) (*tracetest.InMemoryExporter, *OTelEmitter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, NewOTelEmitter(tp.Tracer("test"))
}

func spanAttributes(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{})
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func TestOTelEmitterEmit(t *testing.T) {
	exporter, emitter := newRecordingTracer(t)

	emitter.Emit(Event{
		RunID:  "wf-1",
		Step:   2,
		NodeID: "evaluate_code",
		Msg:    "node_complete",
		Meta: map[string]interface{}{
			"attempt":     1,
			"duration_ms": int64(840),
			"valid":       false,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name != "node_complete" {
		t.Errorf("span name = %q", span.Name)
	}
	attrs := spanAttributes(span.Attributes)
	if attrs["run_id"] != "wf-1" || attrs["step"] != int64(2) || attrs["node_id"] != "evaluate_code" {
		t.Errorf("attrs = %v", attrs)
	}
	if attrs["attempt"] != int64(1) || attrs["duration_ms"] != int64(840) || attrs["valid"] != false {
		t.Errorf("meta attrs = %v", attrs)
	}
	if !span.EndTime.After(span.StartTime) {
		t.Error("span was not ended")
	}
}

func TestOTelEmitterErrorStatus(t *testing.T) {
	exporter, emitter := newRecordingTracer(t)

	emitter.Emit(Event{
		RunID:  "wf-1",
		Step:   1,
		NodeID: "generate_code",
		Msg:    "node_error",
		Meta:   map[string]interface{}{"error": "code generation failed"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", span.Status.Code)
	}
	if span.Status.Description != "code generation failed" {
		t.Errorf("description = %q", span.Status.Description)
	}
	if len(span.Events) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestOTelEmitterNilMeta(t *testing.T) {
	exporter, emitter := newRecordingTracer(t)

	emitter.Emit(Event{RunID: "wf-1", Step: 1, NodeID: "generate_code", Msg: "node_complete"})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := spanAttributes(spans[0].Attributes)
	if attrs["run_id"] != "wf-1" {
		t.Errorf("attrs = %v", attrs)
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("no error meta must not mark the span failed")
	}
}
