// Package ports defines the collaborator capabilities the record orchestration
// core consumes. Every collaborator except Storage is optional; a nil port
// means the capability is absent and the core skips or reports it.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/audit"
)

// Storage persists and loads records.
//
// Store and Update return errors wrapping the sentinels in
// pkg/platform/sentinel (ErrConflict, ErrMissingKey, ErrConstraint,
// ErrDataFault, ErrUnavailable) so faults.Classify can map them.
// FetchOne returns (nil, nil) when the record does not exist.
type Storage interface {
	Store(ctx context.Context, record *models.Record, mode models.PersistenceMode) (models.RecordIdentifier, error)
	FetchOne(ctx context.Context, id models.RecordIdentifier, summary bool) (*models.Record, error)
	Update(ctx context.Context, record *models.Record, mode models.PersistenceMode) (models.RecordIdentifier, error)
}

// PolicyEnforcement decides what a requester may see of a candidate record.
// It may return a redacted copy, or nil to suppress the record entirely, and
// reports anything notable to sink.
type PolicyEnforcement interface {
	Apply(ctx context.Context, requester *models.Record, candidate *models.Record, sink models.IssueSink) (*models.Record, error)
}

// DecisionSupport runs business rules around persistence and retrieval.
type DecisionSupport interface {
	RecordPersisting(ctx context.Context, record *models.Record) []models.DetectedIssue
	RecordPersisted(ctx context.Context, record *models.Record)
	RetrievingRecord(ctx context.Context, id models.RecordIdentifier) []models.DetectedIssue
	RetrievedRecord(ctx context.Context, record *models.Record) []models.DetectedIssue
}

// DocumentRegistration maintains the secondary index used by filter queries.
type DocumentRegistration interface {
	RegisterRecord(ctx context.Context, record *models.Record, mode models.PersistenceMode) error
	QueryRecord(ctx context.Context, filter *models.Filter) ([]models.RecordIdentifier, error)
}

// QueryContinuation remembers resolved query sets so results can be paged.
type QueryContinuation interface {
	IsRegistered(ctx context.Context, queryID uuid.UUID) (bool, error)
	RegisterQuerySet(ctx context.Context, queryID uuid.UUID, ids []models.RecordIdentifier, descriptor models.QueryDescriptor) error
	FetchQuerySet(ctx context.Context, queryID uuid.UUID) (*models.QuerySet, error)
}

// Auditor receives one audit event per logical operation.
type Auditor interface {
	SendAudit(ctx context.Context, event audit.Event) error
}

// Localization resolves message keys to display strings.
type Localization interface {
	GetString(key string) string
}
