package catalog

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reviewkata/reviewkata-go/flow/emit"
)

// UsageSink receives catalog telemetry. Implementations must not
// block; RecordUsage callers treat delivery as fire-and-forget.
type UsageSink interface {
	Record(rec UsageRecord)
}

// NullSink drops every record.
type NullSink struct{}

func (NullSink) Record(UsageRecord) {}

// LogSink forwards usage records to an event emitter.
type LogSink struct {
	Emitter emit.Emitter
}

func (s LogSink) Record(rec UsageRecord) {
	if s.Emitter == nil {
		return
	}
	s.Emitter.Emit(emit.Event{
		NodeID: "catalog",
		Msg:    "defect_usage",
		Meta: map[string]any{
			"defect_code": rec.DefectCode,
			"action":      string(rec.Action),
			"actor":       rec.Actor,
			"context":     rec.Context,
		},
	})
}

// MetricsSink counts usage records per defect and action.
type MetricsSink struct {
	usage *prometheus.CounterVec
}

// NewMetricsSink registers the usage counter on the registry.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	usage := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewkata",
		Name:      "catalog_usage_total",
		Help:      "Catalog defect usage records by defect code and action.",
	}, []string{"defect_code", "action"})
	if reg != nil {
		reg.MustRegister(usage)
	}
	return &MetricsSink{usage: usage}
}

func (s *MetricsSink) Record(rec UsageRecord) {
	s.usage.WithLabelValues(rec.DefectCode, string(rec.Action)).Inc()
}

// BufferedSink retains records in memory, mostly for tests.
type BufferedSink struct {
	mu   sync.Mutex
	recs []UsageRecord
}

func (s *BufferedSink) Record(rec UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

// Records returns a copy of everything recorded so far.
func (s *BufferedSink) Records() []UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UsageRecord, len(s.recs))
	copy(out, s.recs)
	return out
}

// MultiSink fans records out to several sinks.
type MultiSink []UsageSink

func (m MultiSink) Record(rec UsageRecord) {
	for _, s := range m {
		if s != nil {
			s.Record(rec)
		}
	}
}
