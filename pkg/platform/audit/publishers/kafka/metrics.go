package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the Kafka audit publisher.
type Metrics struct {
	Produced            prometheus.Counter
	ProduceFailures     prometheus.Counter
	FallbackWrites      prometheus.Counter
	FallbackFailures    prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with Kafka audit metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Produced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recordgate_audit_kafka_produced_total",
			Help: "Total number of audit events acknowledged by Kafka",
		}),
		ProduceFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recordgate_audit_kafka_produce_failures_total",
			Help: "Total number of audit events Kafka failed to acknowledge",
		}),
		FallbackWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recordgate_audit_kafka_fallback_writes_total",
			Help: "Total number of audit events written to the fallback store",
		}),
		FallbackFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recordgate_audit_kafka_fallback_failures_total",
			Help: "Total number of audit events lost because the fallback store also failed",
		}),
		CircuitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "recordgate_audit_kafka_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) IncProduced() {
	if m == nil {
		return
	}
	m.Produced.Inc()
}

func (m *Metrics) IncProduceFailures() {
	if m == nil {
		return
	}
	m.ProduceFailures.Inc()
}

func (m *Metrics) IncFallbackWrites() {
	if m == nil {
		return
	}
	m.FallbackWrites.Inc()
}

func (m *Metrics) IncFallbackFailures() {
	if m == nil {
		return
	}
	m.FallbackFailures.Inc()
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
