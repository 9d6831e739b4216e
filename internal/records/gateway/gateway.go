// Package gateway resolves a single record identifier to a disclosable record.
package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"recordgate/internal/records/faults"
	"recordgate/internal/records/models"
	"recordgate/internal/records/ports"
)

// MsgNoStorage is the configuration-fault message for a missing storage collaborator.
const MsgNoStorage = "no storage collaborator is configured, records cannot be retrieved"

// Gateway fetches one record and applies per-query filtering and masking.
type Gateway struct {
	storage ports.Storage
	policy  ports.PolicyEnforcement
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPolicy sets the policy-enforcement collaborator.
func WithPolicy(p ports.PolicyEnforcement) Option {
	return func(g *Gateway) {
		g.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a gateway. storage may be nil; Fetch then fails with a
// configuration fault.
func New(storage ports.Storage, opts ...Option) *Gateway {
	g := &Gateway{storage: storage}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HasStorage reports whether a storage collaborator is configured.
func (g *Gateway) HasStorage() bool {
	return g.storage != nil
}

// Fetch loads id and prepares it for disclosure:
//   - history is dropped unless descriptor.IncludeHistory
//   - annotations are flagged masked unless descriptor.IncludeNotes
//   - the policy collaborator may redact the record or suppress it (nil)
//
// A record the store does not hold yields (nil, nil).
func (g *Gateway) Fetch(ctx context.Context, id models.RecordIdentifier, descriptor models.QueryDescriptor, sink models.IssueSink) (*models.Record, error) {
	if g.storage == nil {
		return nil, faults.Configuration(MsgNoStorage)
	}

	record, err := g.storage.FetchOne(ctx, id, descriptor.IsSummary)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	if record == nil {
		if g.logger != nil {
			g.logger.DebugContext(ctx, "record not found", "record", id.String())
		}
		return nil, nil
	}

	if !descriptor.IncludeHistory {
		record.StripHistory()
	}
	if !descriptor.IncludeNotes {
		record.MaskAnnotations()
	}

	if g.policy == nil {
		return record, nil
	}
	record, err = g.policy.Apply(ctx, descriptor.OriginatingQuery, record, sink)
	if err != nil {
		return nil, fmt.Errorf("apply policy to %s: %w", id, err)
	}
	return record, nil
}
