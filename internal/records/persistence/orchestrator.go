// Package persistence drives the single-record register and update workflow:
// validation, decision-support pre-screening, the store call, document index
// registration and audit-on-outcome.
package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recordgate/internal/records/auditing"
	"recordgate/internal/records/faults"
	"recordgate/internal/records/metrics"
	"recordgate/internal/records/models"
	"recordgate/internal/records/ports"
	"recordgate/pkg/platform/audit"
)

// PersistFailureKey is the catalog key of the localized message for
// duplicate, missing-key and constraint faults.
const PersistFailureKey = "DTPE005"

// Detail messages.
const (
	MsgNoStorage       = "no storage collaborator is configured, storage is aborted"
	MsgNilRecord       = "can't persist a nil record"
	MsgInvalidMessage  = "won't attempt to persist an invalid message"
	MsgDetectedIssues  = "Won't attempt to persist message due to detected issues"
	MsgRegistryFailure = "Wasn't able to register event in the event registry, event exists in repository but not in registry. You may not be able to query for this event"
	MsgNoLocalization  = "no localization collaborator is configured, the persistence failure message cannot be resolved"
	MsgUnexpectedFault = "unexpected failure while persisting record"
)

const (
	tracerName        = "recordgate/internal/records/persistence"
	operationRegister = "register"
	operationUpdate   = "update"
	noFault           = ""
)

// Orchestrator runs register and update. It holds no per-call state; one
// instance serves concurrent callers.
type Orchestrator struct {
	storage      ports.Storage
	dss          ports.DecisionSupport
	registration ports.DocumentRegistration
	auditor      ports.Auditor
	localization ports.Localization
	composer     *auditing.Composer
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithDecisionSupport(dss ports.DecisionSupport) Option {
	return func(o *Orchestrator) { o.dss = dss }
}

func WithRegistration(reg ports.DocumentRegistration) Option {
	return func(o *Orchestrator) { o.registration = reg }
}

func WithAuditor(a ports.Auditor) Option {
	return func(o *Orchestrator) { o.auditor = a }
}

func WithLocalization(l ports.Localization) Option {
	return func(o *Orchestrator) { o.localization = l }
}

func WithComposer(c *auditing.Composer) Option {
	return func(o *Orchestrator) { o.composer = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// New creates an orchestrator. storage may be nil; every call then fails
// validation with a configuration detail.
func New(storage ports.Storage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		storage:  storage,
		composer: auditing.NewComposer("", ""),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register persists a new record. It returns the stored identifier, or nil
// when the record was not persisted; diags explains why.
func (o *Orchestrator) Register(ctx context.Context, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier {
	return o.persist(ctx, operationRegister, record, mode, diags)
}

// Update persists a new version of an existing record.
func (o *Orchestrator) Update(ctx context.Context, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier {
	return o.persist(ctx, operationUpdate, record, mode, diags)
}

func (o *Orchestrator) persist(ctx context.Context, operation string, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier {
	ctx, span := o.tracer.Start(ctx, "persistence."+operation, trace.WithAttributes(
		attribute.String("mode", string(mode)),
	))
	defer span.End()
	started := time.Now()

	action := audit.ActionCreate
	if operation == operationUpdate {
		action = audit.ActionUpdate
	}

	id, ok := o.write(ctx, span, operation, action, record, mode, diags)
	if !ok {
		return nil
	}

	// The record is stored from here on; nothing below may unwind it or
	// emit a second audit event.
	o.registerDocument(ctx, id, record, mode, diags)
	o.audit(ctx, o.composer.Write(ctx, action, audit.OutcomeSuccess, record, &id))
	o.notifyPersisted(ctx, id, record)

	o.metrics.IncrementWrite(operation, noFault)
	o.logger.InfoContext(ctx, "record persisted",
		"operation", operation,
		"record", id.String(),
		"mode", string(mode),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return &id
}

// write runs validation, pre-screening and the store call. Any failure here,
// panics included, is reported through fail. ok is false when nothing was
// stored.
func (o *Orchestrator) write(ctx context.Context, span trace.Span, operation string, action audit.Action, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) (id models.RecordIdentifier, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.fail(ctx, span, operation, action, record, diags, faults.New(faults.KindUnknown, MsgUnexpectedFault, faults.Recovered(r)))
			id, ok = models.RecordIdentifier{}, false
		}
	}()

	if !o.validate(record, diags) {
		o.metrics.IncrementWrite(operation, string(faults.KindValidation))
		span.SetStatus(codes.Error, string(faults.KindValidation))
		return models.RecordIdentifier{}, false
	}
	span.SetAttributes(attribute.String("record", record.ID.String()))

	o.preScreen(ctx, record, diags)

	var err error
	if operation == operationUpdate {
		id, err = o.storage.Update(ctx, record, mode)
	} else {
		id, err = o.storage.Store(ctx, record, mode)
	}
	if err != nil {
		o.fail(ctx, span, operation, action, record, diags, err)
		return models.RecordIdentifier{}, false
	}
	return id, true
}

// registerDocument indexes the stored record. Failures, panics included,
// downgrade to a warning detail.
func (o *Orchestrator) registerDocument(ctx context.Context, id models.RecordIdentifier, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) {
	if o.registration == nil {
		return
	}
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = faults.Recovered(r)
			}
		}()
		err = o.registration.RegisterRecord(ctx, record, mode)
	}()
	if err != nil {
		diags.Warning(MsgRegistryFailure, err)
		o.logger.WarnContext(ctx, "document registration failed", "record", id.String(), "error", err)
	}
}

// notifyPersisted tells decision support about the stored record. A panic
// there is logged and otherwise ignored.
func (o *Orchestrator) notifyPersisted(ctx context.Context, id models.RecordIdentifier, record *models.Record) {
	if o.dss == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.WarnContext(ctx, "decision support failed after persist", "record", id.String(), "panic", r)
		}
	}()
	o.dss.RecordPersisted(ctx, record)
}

// validate rejects calls where no store attempt is worth making. Nothing is
// audited for these.
func (o *Orchestrator) validate(record *models.Record, diags *models.Diagnostics) bool {
	switch {
	case o.storage == nil:
		diags.Error(MsgNoStorage, faults.Configuration(MsgNoStorage))
	case record == nil:
		diags.Error(MsgNilRecord, faults.Validation(MsgNilRecord))
	case diags.HasErrorDetail():
		diags.Error(MsgInvalidMessage, faults.Validation(MsgInvalidMessage))
	default:
		return true
	}
	return false
}

// preScreen asks decision support to review the pending record. An
// error-priority issue is reported but does not stop the store call.
func (o *Orchestrator) preScreen(ctx context.Context, record *models.Record, diags *models.Diagnostics) {
	if o.dss != nil {
		diags.AddIssues(o.dss.RecordPersisting(ctx, record)...)
	}
	if diags.HasErrorIssue() {
		diags.Error(MsgDetectedIssues, nil)
	}
}

// fail reports a store-stage fault and emits the epic-fail audit.
func (o *Orchestrator) fail(ctx context.Context, span trace.Span, operation string, action audit.Action, record *models.Record, diags *models.Diagnostics, err error) {
	kind := faults.Classify(err)

	switch {
	case kind.Localized():
		diags.Error(o.localizedFailure(), err)
	case kind == faults.KindIssueRaised:
		// carried issue only
	case kind == faults.KindUnknown:
		diags.Error(unknownMessage(err), err)
	default:
		diags.Error(err.Error(), err)
	}
	if issue, ok := faults.IssueFor(err); ok {
		diags.AddIssue(issue)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
	o.metrics.IncrementWrite(operation, string(kind))
	o.logger.ErrorContext(ctx, "record persistence failed",
		"operation", operation,
		"fault", string(kind),
		"error", err,
	)
	o.audit(ctx, o.composer.Write(ctx, action, audit.OutcomeEpicFail, record, nil))
}

func (o *Orchestrator) localizedFailure() string {
	if o.localization == nil {
		return MsgNoLocalization
	}
	return o.localization.GetString(PersistFailureKey)
}

func (o *Orchestrator) audit(ctx context.Context, event audit.Event) {
	if o.auditor == nil {
		return
	}
	if err := o.auditor.SendAudit(ctx, event); err != nil {
		o.logger.ErrorContext(ctx, "failed to send persistence audit", "outcome", string(event.Outcome), "error", err)
	}
}

func unknownMessage(err error) string {
	var f *faults.Fault
	if errors.As(err, &f) && f.Kind == faults.KindUnknown {
		return f.Message
	}
	return err.Error()
}
