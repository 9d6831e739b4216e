// Package registry is the in-memory document index used to resolve filter
// queries into record identifiers.
package registry

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

type entry struct {
	id         models.RecordIdentifier
	recordType string
	status     string
	attributes map[string]string
}

// Index keeps one entry per record, in first-registration order.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

func NewIndex() *Index {
	return &Index{entries: make(map[string]*entry)}
}

// RegisterRecord indexes record, replacing any earlier entry for the same
// domain and identifier.
func (x *Index) RegisterRecord(_ context.Context, record *models.Record, _ models.PersistenceMode) error {
	if record == nil || record.ID.IsZero() {
		return fmt.Errorf("cannot index a record without an identifier: %w", sentinel.ErrConstraint)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	key := record.ID.String()
	if _, ok := x.entries[key]; !ok {
		x.order = append(x.order, key)
	}
	x.entries[key] = &entry{
		id:         models.NewRecordIdentifier(record.ID.Domain, record.ID.Identifier),
		recordType: record.Type,
		status:     record.Status,
		attributes: maps.Clone(record.Attributes),
	}
	return nil
}

// QueryRecord returns the identifiers of every indexed record matching all
// constraints of filter. An empty filter matches nothing.
func (x *Index) QueryRecord(_ context.Context, filter *models.Filter) ([]models.RecordIdentifier, error) {
	if filter.IsEmpty() {
		return []models.RecordIdentifier{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]models.RecordIdentifier, 0)
	for _, key := range x.order {
		e := x.entries[key]
		if e.matches(filter) {
			out = append(out, e.id)
		}
	}
	return out, nil
}

func (e *entry) matches(f *models.Filter) bool {
	if f.Domain != "" && f.Domain != e.id.Domain {
		return false
	}
	if f.Type != "" && f.Type != e.recordType {
		return false
	}
	for k, v := range f.Attributes {
		if e.attributes[k] != v {
			return false
		}
	}
	return true
}
