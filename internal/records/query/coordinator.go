// Package query fans a batch of record identifiers out to the record gateway,
// aggregates results and diagnostics under a time budget, and emits one audit
// event per batch.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"recordgate/internal/records/auditing"
	"recordgate/internal/records/faults"
	"recordgate/internal/records/gateway"
	"recordgate/internal/records/metrics"
	"recordgate/internal/records/models"
	"recordgate/internal/records/ports"
	"recordgate/pkg/platform/audit"
)

const (
	// DefaultTimeout is the wall-clock budget of one batch.
	DefaultTimeout = 20 * time.Second
	// DefaultWorkerMultiplier sizes the pool relative to runtime.NumCPU.
	DefaultWorkerMultiplier = 4

	tracerName = "recordgate/internal/records/query"
)

// ErrBatchTimeout is the cause recorded when a batch exceeds its budget.
var ErrBatchTimeout = errors.New("record retrieval exceeded its time budget")

// Coordinator runs batch retrievals.
type Coordinator struct {
	gateway      *gateway.Gateway
	dss          ports.DecisionSupport
	continuation ports.QueryContinuation
	registration ports.DocumentRegistration
	auditor      ports.Auditor
	composer     *auditing.Composer
	timeout      time.Duration
	workers      int
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithDecisionSupport(dss ports.DecisionSupport) Option {
	return func(c *Coordinator) { c.dss = dss }
}

func WithContinuation(qc ports.QueryContinuation) Option {
	return func(c *Coordinator) { c.continuation = qc }
}

func WithRegistration(reg ports.DocumentRegistration) Option {
	return func(c *Coordinator) { c.registration = reg }
}

func WithAuditor(a ports.Auditor) Option {
	return func(c *Coordinator) { c.auditor = a }
}

func WithComposer(composer *auditing.Composer) Option {
	return func(c *Coordinator) { c.composer = composer }
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithWorkerMultiplier sizes the pool at multiplier x NumCPU. Non-positive
// values are ignored.
func WithWorkerMultiplier(multiplier int) Option {
	return func(c *Coordinator) {
		if multiplier > 0 {
			c.workers = multiplier * runtime.NumCPU()
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = t }
}

// New creates a coordinator over gw.
func New(gw *gateway.Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:  gw,
		composer: auditing.NewComposer("", ""),
		timeout:  DefaultTimeout,
		workers:  DefaultWorkerMultiplier * runtime.NumCPU(),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve fetches the first min(descriptor.MaxResults, len(ids)) records.
// It never fails: hard faults yield an empty outcome and an explanation in diags.
func (c *Coordinator) Retrieve(ctx context.Context, ids []models.RecordIdentifier, descriptor models.QueryDescriptor, diags *models.Diagnostics) (outcome models.RetrievalOutcome) {
	ctx, span := c.tracer.Start(ctx, "query.Retrieve", trace.WithAttributes(
		attribute.String("query_id", descriptor.QueryID.String()),
		attribute.Int("requested", len(ids)),
	))
	defer span.End()
	defer c.recoverBatch(ctx, span, descriptor, diags, &outcome)

	if !c.ready(ctx, span, descriptor, diags) {
		return models.EmptyOutcome(descriptor.QueryID)
	}

	b, ok := c.run(ctx, span, workSet(ids, descriptor.MaxResults), descriptor, diags)
	if !ok {
		return models.EmptyOutcome(descriptor.QueryID)
	}

	c.register(ctx, descriptor, ids, diags)
	return models.RetrievalOutcome{
		QueryID:         descriptor.QueryID,
		Results:         b.results,
		TotalCandidates: len(ids) - b.withheld,
	}
}

// QueryByFilter resolves the originating query's filter through the document
// registration collaborator and retrieves the resolved records.
func (c *Coordinator) QueryByFilter(ctx context.Context, descriptor models.QueryDescriptor, diags *models.Diagnostics) (outcome models.RetrievalOutcome) {
	ctx, span := c.tracer.Start(ctx, "query.QueryByFilter", trace.WithAttributes(
		attribute.String("query_id", descriptor.QueryID.String()),
	))
	defer span.End()
	defer c.recoverBatch(ctx, span, descriptor, diags, &outcome)

	if c.registration == nil {
		c.abort(ctx, span, descriptor, diags, faults.Configuration("no document registration collaborator is configured, filter queries cannot be resolved"))
		return models.EmptyOutcome(descriptor.QueryID)
	}
	if !c.ready(ctx, span, descriptor, diags) {
		return models.EmptyOutcome(descriptor.QueryID)
	}

	var filter *models.Filter
	if descriptor.OriginatingQuery != nil {
		filter = descriptor.OriginatingQuery.Filter
	}
	ids, err := c.registration.QueryRecord(ctx, filter)
	if err != nil {
		c.abort(ctx, span, descriptor, diags, fmt.Errorf("resolve query filter: %w", err))
		return models.EmptyOutcome(descriptor.QueryID)
	}
	span.SetAttributes(attribute.Int("resolved", len(ids)))

	b, ok := c.run(ctx, span, workSet(ids, descriptor.MaxResults), descriptor, diags)
	if !ok {
		return models.EmptyOutcome(descriptor.QueryID)
	}

	c.register(ctx, descriptor, ids, diags)
	return models.RetrievalOutcome{
		QueryID:         descriptor.QueryID,
		Results:         b.results,
		TotalCandidates: len(ids),
	}
}

// Continue retrieves count records of a registered query set starting at the
// zero-based position start.
func (c *Coordinator) Continue(ctx context.Context, queryID uuid.UUID, start, count int, diags *models.Diagnostics) (outcome models.RetrievalOutcome) {
	ctx, span := c.tracer.Start(ctx, "query.Continue", trace.WithAttributes(
		attribute.String("query_id", queryID.String()),
		attribute.Int("start", start),
		attribute.Int("count", count),
	))
	defer span.End()

	descriptor := models.QueryDescriptor{QueryID: queryID}
	defer c.recoverBatch(ctx, span, descriptor, diags, &outcome)

	if c.continuation == nil {
		c.abort(ctx, span, descriptor, diags, faults.Configuration("no query continuation collaborator is configured, queries cannot be continued"))
		return models.EmptyOutcome(queryID)
	}
	if !c.gateway.HasStorage() {
		c.abort(ctx, span, descriptor, diags, faults.Configuration(gateway.MsgNoStorage))
		return models.EmptyOutcome(queryID)
	}

	set, err := c.continuation.FetchQuerySet(ctx, queryID)
	if err != nil {
		c.abort(ctx, span, descriptor, diags, fmt.Errorf("fetch query set %s: %w", queryID, err))
		return models.EmptyOutcome(queryID)
	}
	if set == nil {
		c.abort(ctx, span, descriptor, diags, faults.Validation(fmt.Sprintf("query '%s' is not registered", queryID)))
		return models.EmptyOutcome(queryID)
	}

	descriptor = set.Descriptor
	descriptor.QueryID = queryID
	descriptor.MaxResults = count

	start = max(start, 0)
	var page []models.RecordIdentifier
	if start < len(set.Identifiers) {
		page = set.Identifiers[start:]
	}

	b, ok := c.run(ctx, span, workSet(page, count), descriptor, diags)
	if !ok {
		return models.EmptyOutcome(queryID)
	}
	return models.RetrievalOutcome{
		QueryID:           queryID,
		Results:           b.results,
		TotalCandidates:   len(set.Identifiers),
		StartRecordNumber: start,
	}
}

// ready checks batch preconditions: a storage collaborator and an
// unregistered query id.
func (c *Coordinator) ready(ctx context.Context, span trace.Span, descriptor models.QueryDescriptor, diags *models.Diagnostics) bool {
	if !c.gateway.HasStorage() {
		c.abort(ctx, span, descriptor, diags, faults.Configuration(gateway.MsgNoStorage))
		return false
	}
	if c.continuation == nil {
		return true
	}

	registered, err := c.continuation.IsRegistered(ctx, descriptor.QueryID)
	if err != nil {
		c.abort(ctx, span, descriptor, diags, faults.New(faults.KindStorage, "query continuation lookup failed", err))
		return false
	}
	if registered {
		c.abort(ctx, span, descriptor, diags, faults.Validation(fmt.Sprintf(
			"the query '%s' has already been registered, use the continuation interface to page it", descriptor.QueryID)))
		return false
	}
	return true
}

// run executes the work set and, when it completes inside the budget, emits
// the batch audit. ok is false when the batch was aborted.
func (c *Coordinator) run(ctx context.Context, span trace.Span, work []models.RecordIdentifier, descriptor models.QueryDescriptor, diags *models.Diagnostics) (*batch, bool) {
	started := time.Now()
	b, err := c.execute(ctx, work, descriptor, diags)
	if err != nil {
		c.abort(ctx, span, descriptor, diags, err)
		c.metrics.ObserveBatch(string(audit.OutcomeEpicFail), time.Since(started))
		return nil, false
	}

	disclosed := b.disclosedIDs()
	outcome := audit.OutcomeSuccess
	if len(disclosed) == 0 {
		outcome = audit.OutcomeMinorFail
	}
	c.audit(ctx, c.composer.Query(ctx, outcome, descriptor.OriginatingQuery, disclosed))
	c.metrics.ObserveBatch(string(outcome), time.Since(started))

	span.SetAttributes(attribute.Int("disclosed", len(disclosed)), attribute.Int("withheld", b.withheld))
	c.logger.InfoContext(ctx, "records retrieved",
		"query_id", descriptor.QueryID.String(),
		"requested", len(work),
		"disclosed", len(disclosed),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return b, true
}

// execute dispatches one task per identifier into a bounded group and waits
// for all of them or the batch deadline, whichever comes first. On deadline
// the batch is abandoned: unstarted tasks are never dispatched and late
// results from running tasks are dropped.
func (c *Coordinator) execute(ctx context.Context, work []models.RecordIdentifier, descriptor models.QueryDescriptor, diags *models.Diagnostics) (*batch, error) {
	b := newBatch(work, diags)
	if len(work) == 0 {
		return b, nil
	}

	batchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, id := range work {
			if batchCtx.Err() != nil {
				break
			}
			g.Go(func() error {
				// g.Go may have waited for a worker past the deadline.
				if batchCtx.Err() != nil {
					return nil
				}
				c.retrieveOne(batchCtx, b, id, descriptor)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
		return b, nil
	case <-batchCtx.Done():
	}

	// Completion and deadline may race; completed work wins.
	select {
	case <-done:
		return b, nil
	default:
	}

	b.abandon()
	if errors.Is(batchCtx.Err(), context.DeadlineExceeded) {
		return nil, faults.New(faults.KindTimeout, fmt.Sprintf("retrieval did not complete within %s", c.timeout), ErrBatchTimeout)
	}
	return nil, fmt.Errorf("retrieval interrupted: %w", batchCtx.Err())
}

// retrieveOne runs the per-identifier pipeline: pre-screen, fetch,
// post-screen, then merge into the batch.
func (c *Coordinator) retrieveOne(ctx context.Context, b *batch, id models.RecordIdentifier, descriptor models.QueryDescriptor) {
	res := &taskResult{id: id}
	defer func() {
		if r := recover(); r != nil {
			res.record = nil
			res.fail(faults.Recovered(r))
			c.logger.ErrorContext(ctx, "record task panicked", "record", id.String(), "panic", r)
		}
		c.metrics.IncrementRecord(res.label)
		if !b.merge(res) {
			c.metrics.IncrementAbandoned()
		}
	}()

	if c.dss != nil {
		res.AddIssues(c.dss.RetrievingRecord(ctx, id)...)
	}

	fetchStart := time.Now()
	record, err := c.gateway.Fetch(ctx, id, descriptor, res)
	c.metrics.ObserveFetch(time.Since(fetchStart))
	if err != nil {
		c.logger.WarnContext(ctx, "record fetch failed", "record", id.String(), "error", err)
		res.fail(err)
		return
	}

	if record != nil && c.dss != nil {
		res.AddIssues(c.dss.RetrievedRecord(ctx, record)...)
	}

	switch {
	case record == nil:
		res.withhold(resultAbsent)
	case record.IsMasked:
		res.withhold(resultMasked)
	default:
		res.record = record
		res.label = resultDisclosed
	}
}

// abort records a batch-level fault and emits the epic-fail audit for it.
func (c *Coordinator) abort(ctx context.Context, span trace.Span, descriptor models.QueryDescriptor, diags *models.Diagnostics, err error) {
	diags.Error(faultMessage(err), err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(faults.Classify(err)))
	c.logger.ErrorContext(ctx, "record retrieval aborted",
		"query_id", descriptor.QueryID.String(),
		"fault", string(faults.Classify(err)),
		"error", err,
	)
	c.audit(ctx, c.composer.Query(ctx, audit.OutcomeEpicFail, descriptor.OriginatingQuery, nil))
}

// recoverBatch turns a panic escaping the batch into an aborted retrieval.
func (c *Coordinator) recoverBatch(ctx context.Context, span trace.Span, descriptor models.QueryDescriptor, diags *models.Diagnostics, outcome *models.RetrievalOutcome) {
	r := recover()
	if r == nil {
		return
	}
	c.abort(ctx, span, descriptor, diags, faults.New(faults.KindUnknown, "unexpected failure while retrieving records", faults.Recovered(r)))
	*outcome = models.EmptyOutcome(descriptor.QueryID)
}

// register stores the resolved identifier set for continuation.
func (c *Coordinator) register(ctx context.Context, descriptor models.QueryDescriptor, ids []models.RecordIdentifier, diags *models.Diagnostics) {
	if c.continuation == nil {
		return
	}
	if err := c.continuation.RegisterQuerySet(ctx, descriptor.QueryID, ids, descriptor); err != nil {
		diags.Warning("query results were returned but the query could not be registered for continuation", err)
		c.logger.WarnContext(ctx, "failed to register query set", "query_id", descriptor.QueryID.String(), "error", err)
	}
}

func (c *Coordinator) audit(ctx context.Context, event audit.Event) {
	if c.auditor == nil {
		return
	}
	if err := c.auditor.SendAudit(ctx, event); err != nil {
		c.logger.ErrorContext(ctx, "failed to send query audit", "outcome", string(event.Outcome), "error", err)
	}
}

func workSet(ids []models.RecordIdentifier, maxResults int) []models.RecordIdentifier {
	n := min(max(maxResults, 0), len(ids))
	return ids[:n:n]
}

func faultMessage(err error) string {
	var f *faults.Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
