// Package records wires the retrieval and persistence cores from one set of
// collaborators. Only storage is needed for useful work; every other
// collaborator is optional and checked once here.
package records

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"recordgate/internal/records/auditing"
	"recordgate/internal/records/gateway"
	"recordgate/internal/records/metrics"
	"recordgate/internal/records/models"
	"recordgate/internal/records/persistence"
	"recordgate/internal/records/ports"
	"recordgate/internal/records/query"
)

// Collaborators are the capabilities the service orchestrates. Nil fields
// mean the capability is absent.
type Collaborators struct {
	Storage      ports.Storage
	Policy       ports.PolicyEnforcement
	Decision     ports.DecisionSupport
	Registration ports.DocumentRegistration
	Continuation ports.QueryContinuation
	Auditor      ports.Auditor
	Localization ports.Localization
}

// Service is the public entry point for record retrieval and persistence.
type Service struct {
	coordinator  *query.Coordinator
	orchestrator *persistence.Orchestrator
}

type settings struct {
	nodeName         string
	pidRoot          string
	queryTimeout     time.Duration
	workerMultiplier int
	logger           *slog.Logger
	metrics          *metrics.Metrics
}

// Option configures the Service.
type Option func(*settings)

// WithNode sets the node identity stamped on audit events.
func WithNode(nodeName, pidRoot string) Option {
	return func(s *settings) {
		s.nodeName = nodeName
		s.pidRoot = pidRoot
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(s *settings) { s.queryTimeout = d }
}

func WithWorkerMultiplier(n int) Option {
	return func(s *settings) { s.workerMultiplier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// New builds the gateway, coordinator and orchestrator over c.
func New(c Collaborators, opts ...Option) *Service {
	cfg := settings{
		queryTimeout:     query.DefaultTimeout,
		workerMultiplier: query.DefaultWorkerMultiplier,
		logger:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	composer := auditing.NewComposer(cfg.nodeName, cfg.pidRoot)

	gwOpts := []gateway.Option{gateway.WithLogger(cfg.logger)}
	if c.Policy != nil {
		gwOpts = append(gwOpts, gateway.WithPolicy(c.Policy))
	}
	gw := gateway.New(c.Storage, gwOpts...)

	qOpts := []query.Option{
		query.WithComposer(composer),
		query.WithTimeout(cfg.queryTimeout),
		query.WithWorkerMultiplier(cfg.workerMultiplier),
		query.WithLogger(cfg.logger),
		query.WithMetrics(cfg.metrics),
	}
	pOpts := []persistence.Option{
		persistence.WithComposer(composer),
		persistence.WithLogger(cfg.logger),
		persistence.WithMetrics(cfg.metrics),
	}
	// Interface-typed nils would defeat the collaborators' nil checks.
	if c.Decision != nil {
		qOpts = append(qOpts, query.WithDecisionSupport(c.Decision))
		pOpts = append(pOpts, persistence.WithDecisionSupport(c.Decision))
	}
	if c.Registration != nil {
		qOpts = append(qOpts, query.WithRegistration(c.Registration))
		pOpts = append(pOpts, persistence.WithRegistration(c.Registration))
	}
	if c.Continuation != nil {
		qOpts = append(qOpts, query.WithContinuation(c.Continuation))
	}
	if c.Auditor != nil {
		qOpts = append(qOpts, query.WithAuditor(c.Auditor))
		pOpts = append(pOpts, persistence.WithAuditor(c.Auditor))
	}
	if c.Localization != nil {
		pOpts = append(pOpts, persistence.WithLocalization(c.Localization))
	}

	if c.Storage == nil {
		cfg.logger.Warn("records service started without a storage collaborator; every operation will fail")
	}

	return &Service{
		coordinator:  query.New(gw, qOpts...),
		orchestrator: persistence.New(c.Storage, pOpts...),
	}
}

// Retrieve fetches records by identifier.
func (s *Service) Retrieve(ctx context.Context, ids []models.RecordIdentifier, descriptor models.QueryDescriptor, diags *models.Diagnostics) models.RetrievalOutcome {
	return s.coordinator.Retrieve(ctx, ids, descriptor, diags)
}

// Query resolves the descriptor's filter and fetches the matching records.
func (s *Service) Query(ctx context.Context, descriptor models.QueryDescriptor, diags *models.Diagnostics) models.RetrievalOutcome {
	return s.coordinator.QueryByFilter(ctx, descriptor, diags)
}

// Continue pages a previously registered query.
func (s *Service) Continue(ctx context.Context, queryID uuid.UUID, start, count int, diags *models.Diagnostics) models.RetrievalOutcome {
	return s.coordinator.Continue(ctx, queryID, start, count, diags)
}

// Register persists a new record.
func (s *Service) Register(ctx context.Context, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier {
	return s.orchestrator.Register(ctx, record, mode, diags)
}

// Update persists a new version of an existing record.
func (s *Service) Update(ctx context.Context, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier {
	return s.orchestrator.Update(ctx, record, mode, diags)
}
