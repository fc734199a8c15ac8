package catalog

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reviewkata/reviewkata-go/flow/emit"
)

func TestMetricsSink(t *testing.T) {
	registry := prometheus.NewRegistry()
	sink := NewMetricsSink(registry)

	sink.Record(UsageRecord{DefectCode: "logical_off_by_one_loop_bound", Action: ActionPracticed})
	sink.Record(UsageRecord{DefectCode: "logical_off_by_one_loop_bound", Action: ActionPracticed})

	got := testutil.ToFloat64(sink.usage.WithLabelValues("logical_off_by_one_loop_bound", "practiced"))
	if got != 2 {
		t.Errorf("counter = %v, want 2", got)
	}
}

func TestLogSink(t *testing.T) {
	var sb strings.Builder
	sink := LogSink{Emitter: emit.NewLogEmitter(&sb, true)}

	sink.Record(UsageRecord{DefectCode: "logical_integer_division_truncation", Action: ActionViewed})

	out := sb.String()
	if !strings.Contains(out, "defect_usage") || !strings.Contains(out, "logical_integer_division_truncation") {
		t.Errorf("log output = %q", out)
	}

	// A nil emitter is a no-op, not a panic.
	LogSink{}.Record(UsageRecord{DefectCode: "x", Action: ActionViewed})
}

func TestMultiSink(t *testing.T) {
	a := &BufferedSink{}
	b := &BufferedSink{}
	multi := MultiSink{a, nil, b}

	multi.Record(UsageRecord{DefectCode: "x", Action: ActionFailed})

	if len(a.Records()) != 1 || len(b.Records()) != 1 {
		t.Error("record should fan out to every non-nil sink")
	}
}
