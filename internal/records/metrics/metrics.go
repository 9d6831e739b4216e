package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for record retrieval and persistence.
type Metrics struct {
	// Batch retrieval latency by terminal status
	BatchLatency *prometheus.HistogramVec

	// Per-record retrieval results: disclosed, absent, masked, failed
	RecordOutcome *prometheus.CounterVec

	// Gateway fetch latency
	FetchLatency prometheus.Histogram

	// Register/update results by operation and fault kind ("" on success)
	WriteOutcome *prometheus.CounterVec

	// Late task writes dropped after a batch was abandoned
	AbandonedWrites prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg, so tests can use a private registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recordgate_retrieval_batch_duration_seconds",
			Help:    "Duration of batch retrievals by terminal status",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"status"}), // status: "success", "minor_fail", "epic_fail"

		RecordOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_retrieval_records_total",
			Help: "Per-record retrieval results",
		}, []string{"result"}),

		FetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recordgate_gateway_fetch_duration_seconds",
			Help:    "Duration of single-record gateway fetches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		WriteOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recordgate_persistence_writes_total",
			Help: "Register and update attempts by operation and fault kind",
		}, []string{"operation", "fault"}),

		AbandonedWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "recordgate_retrieval_abandoned_writes_total",
			Help: "Task results discarded because their batch had already timed out",
		}),
	}
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(status string, d time.Duration) {
	if m != nil {
		m.BatchLatency.WithLabelValues(status).Observe(d.Seconds())
	}
}

// IncrementRecord records one per-record result.
func (m *Metrics) IncrementRecord(result string) {
	if m != nil {
		m.RecordOutcome.WithLabelValues(result).Inc()
	}
}

// ObserveFetch records one gateway fetch.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m != nil {
		m.FetchLatency.Observe(d.Seconds())
	}
}

// IncrementWrite records a register/update attempt.
func (m *Metrics) IncrementWrite(operation, fault string) {
	if m != nil {
		m.WriteOutcome.WithLabelValues(operation, fault).Inc()
	}
}

// IncrementAbandoned records a discarded late write.
func (m *Metrics) IncrementAbandoned() {
	if m != nil {
		m.AbandonedWrites.Inc()
	}
}
