// Package memory is a map-backed record store for development and tests.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

type entry struct {
	record  *models.Record
	version int
}

// InMemoryStore keeps the latest version of each record keyed by
// domain@identifier. Superseded versions move into the record's history.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*entry
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*entry),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Store(_ context.Context, record *models.Record, _ models.PersistenceMode) (models.RecordIdentifier, error) {
	if err := checkKey(record); err != nil {
		return models.RecordIdentifier{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.ID.String()
	if _, exists := s.records[key]; exists {
		return models.RecordIdentifier{}, fmt.Errorf("record %s already registered: %w", key, sentinel.ErrConflict)
	}

	stored := record.Clone()
	stored.ID.Version = "1"
	s.records[key] = &entry{record: stored, version: 1}
	return stored.ID, nil
}

func (s *InMemoryStore) Update(_ context.Context, record *models.Record, _ models.PersistenceMode) (models.RecordIdentifier, error) {
	if err := checkKey(record); err != nil {
		return models.RecordIdentifier{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.ID.String()
	current, ok := s.records[key]
	if !ok {
		return models.RecordIdentifier{}, fmt.Errorf("record %s is not registered: %w", key, sentinel.ErrMissingKey)
	}

	next := record.Clone()
	next.Supersede(current.record, s.now())
	current.version++
	next.ID.Version = strconv.Itoa(current.version)
	current.record = next
	return next.ID, nil
}

func (s *InMemoryStore) FetchOne(_ context.Context, id models.RecordIdentifier, summary bool) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current, ok := s.records[id.String()]
	if !ok {
		return nil, nil
	}
	if id.Version != "" && id.Version != current.record.ID.Version {
		return nil, nil
	}
	out := current.record.Clone()
	if summary {
		out.History = nil
		out.Annotations = nil
	}
	return out, nil
}

// Len returns the number of distinct records held.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func checkKey(record *models.Record) error {
	if record == nil {
		return fmt.Errorf("nil record: %w", sentinel.ErrDataFault)
	}
	if record.ID.Domain == "" || record.ID.Identifier == "" {
		return fmt.Errorf("record identifier requires a domain and an identifier: %w", sentinel.ErrConstraint)
	}
	return nil
}
