// Package kafka publishes audit events to a Kafka topic.
//
// Every event is produced synchronously. When Kafka rejects an event it is
// appended to a fallback audit.Store instead, so an audit record is never lost
// to a broker outage. A circuit breaker tracks broker health: while it is open,
// events Kafka did acknowledge are also mirrored to the fallback store until
// enough consecutive successes close the circuit again.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "recordgate/pkg/platform/audit"
	"recordgate/pkg/platform/circuit"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client used by the publisher.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher emits audit events to Kafka with a store fallback.
type Publisher struct {
	producer Producer
	topic    string
	fallback audit.Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for produce and fallback failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithBreaker replaces the default breaker (5 failures to open, 3 successes to close).
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

// New creates a publisher around an existing producer.
func New(producer Producer, topic string, fallback audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		fallback: fallback,
		breaker:  circuit.New("audit-kafka"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dial connects to the brokers, ensures the audit topic exists, and returns a
// publisher owning the client.
func Dial(ctx context.Context, brokers []string, topic string, fallback audit.Store, opts ...Option) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	if err := EnsureTopic(ctx, kadm.NewClient(client), topic); err != nil {
		client.Close()
		return nil, err
	}
	return New(client, topic, fallback, opts...), nil
}

// EnsureTopic creates topic with a single partition when it does not exist yet.
func EnsureTopic(ctx context.Context, adm *kadm.Client, topic string) error {
	resp, err := adm.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %s: %w", topic, resp.Err)
	}
	return nil
}

// SendAudit satisfies the records Auditor port.
func (p *Publisher) SendAudit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	err := p.produce(ctx, event)
	if err != nil {
		p.metrics.IncProduceFailures()
		_, change := p.breaker.RecordFailure()
		if change.Opened {
			p.metrics.SetCircuitBreakerState(true)
			p.logWarn(ctx, "audit kafka circuit opened", "topic", p.topic, "error", err)
		}
		return p.writeFallback(ctx, event, err)
	}

	p.metrics.IncProduced()
	usePrimary, change := p.breaker.RecordSuccess()
	if change.Closed {
		p.metrics.SetCircuitBreakerState(false)
		p.logWarn(ctx, "audit kafka circuit closed", "topic", p.topic)
	}
	if !usePrimary {
		return p.writeFallback(ctx, event, nil)
	}
	return nil
}

// Close releases the underlying producer.
func (p *Publisher) Close() {
	p.producer.Close()
}

func (p *Publisher) produce(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category())},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.producer.ProduceSync(ctx, record).FirstErr()
}

func (p *Publisher) writeFallback(ctx context.Context, event audit.Event, cause error) error {
	if p.fallback == nil {
		if cause != nil {
			return fmt.Errorf("produce audit event: %w", cause)
		}
		return nil
	}
	if err := p.fallback.Append(ctx, event); err != nil {
		p.metrics.IncFallbackFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit event lost",
				"event_id", event.ID,
				"kafka_error", cause,
				"fallback_error", err,
			)
		}
		return errors.Join(cause, fmt.Errorf("fallback append: %w", err))
	}
	p.metrics.IncFallbackWrites()
	return nil
}

func (p *Publisher) logWarn(ctx context.Context, msg string, args ...any) {
	if p.logger != nil {
		p.logger.WarnContext(ctx, msg, args...)
	}
}
