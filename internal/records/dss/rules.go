// Package dss is the default decision-support rule set run around record
// persistence and retrieval.
package dss

import (
	"context"
	"fmt"
	"log/slog"

	"recordgate/internal/records/models"
)

// PersistRule inspects a record about to be persisted. Rules are pure: no I/O.
type PersistRule func(record *models.Record) []models.DetectedIssue

// RetrieveRule inspects an identifier about to be fetched, or a fetched record
// (id is then the record's own identifier).
type RetrieveRule func(id models.RecordIdentifier, record *models.Record) []models.DetectedIssue

// Engine evaluates rules in registration order and concatenates their issues.
type Engine struct {
	persist  []PersistRule
	retrieve []RetrieveRule
	logger   *slog.Logger
}

type Option func(*Engine)

// WithPersistRules appends rules to the default persistence rules.
func WithPersistRules(rules ...PersistRule) Option {
	return func(e *Engine) { e.persist = append(e.persist, rules...) }
}

// WithRetrieveRules sets retrieval rules. There are none by default.
func WithRetrieveRules(rules ...RetrieveRule) Option {
	return func(e *Engine) { e.retrieve = append(e.retrieve, rules...) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New returns an engine with RequireIdentifier and RequireAuthor installed.
func New(opts ...Option) *Engine {
	e := &Engine{
		persist: []PersistRule{RequireIdentifier, RequireAuthor},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) RecordPersisting(_ context.Context, record *models.Record) []models.DetectedIssue {
	var issues []models.DetectedIssue
	for _, rule := range e.persist {
		issues = append(issues, rule(record)...)
	}
	return issues
}

func (e *Engine) RecordPersisted(ctx context.Context, record *models.Record) {
	e.logger.DebugContext(ctx, "record persisted", "record", record.ID.String(), "type", record.Type)
}

func (e *Engine) RetrievingRecord(_ context.Context, id models.RecordIdentifier) []models.DetectedIssue {
	var issues []models.DetectedIssue
	for _, rule := range e.retrieve {
		issues = append(issues, rule(id, nil)...)
	}
	return issues
}

func (e *Engine) RetrievedRecord(_ context.Context, record *models.Record) []models.DetectedIssue {
	var issues []models.DetectedIssue
	for _, rule := range e.retrieve {
		issues = append(issues, rule(record.ID, record)...)
	}
	return issues
}

// RequireIdentifier rejects records that carry no identifier.
func RequireIdentifier(record *models.Record) []models.DetectedIssue {
	if !record.ID.IsZero() {
		return nil
	}
	return []models.DetectedIssue{{
		Severity: models.SeverityHigh,
		Type:     models.IssueDetected,
		Text:     "Record has no identifier and cannot be persisted",
		Priority: models.PriorityError,
	}}
}

// RequireAuthor warns about records without an authoring participant.
func RequireAuthor(record *models.Record) []models.DetectedIssue {
	if _, ok := record.Author(); ok {
		return nil
	}
	return []models.DetectedIssue{{
		Severity: models.SeverityModerate,
		Type:     models.IssueDataQuality,
		Text:     fmt.Sprintf("Record '%s' has no author participant", record.ID),
		Priority: models.PriorityWarning,
	}}
}

// BlockDomains flags any retrieval from the listed assigning domains.
func BlockDomains(domains ...string) RetrieveRule {
	blocked := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		blocked[d] = struct{}{}
	}
	return func(id models.RecordIdentifier, record *models.Record) []models.DetectedIssue {
		if record != nil {
			return nil
		}
		if _, ok := blocked[id.Domain]; !ok {
			return nil
		}
		return []models.DetectedIssue{{
			Severity: models.SeverityModerate,
			Type:     models.IssueBusinessConstraintViolation,
			Text:     fmt.Sprintf("Records of domain '%s' are not shared by this node", id.Domain),
			Priority: models.PriorityWarning,
		}}
	}
}
