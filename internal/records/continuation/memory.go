package continuation

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

type registration struct {
	set       models.QuerySet
	expiresAt time.Time
}

// InMemoryStore is a single-process QueryContinuation for development and tests.
type InMemoryStore struct {
	mu    sync.Mutex
	sets  map[uuid.UUID]registration
	ttl   time.Duration
	clock func() time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		sets:  make(map[uuid.UUID]registration),
		ttl:   ttl,
		clock: time.Now,
	}
}

func (s *InMemoryStore) IsRegistered(_ context.Context, queryID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(queryID)
	return ok, nil
}

func (s *InMemoryStore) RegisterQuerySet(_ context.Context, queryID uuid.UUID, ids []models.RecordIdentifier, descriptor models.QueryDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(queryID); ok {
		return fmt.Errorf("query set %s: %w", queryID, sentinel.ErrConflict)
	}
	s.sets[queryID] = registration{
		set:       models.QuerySet{QueryID: queryID, Identifiers: slices.Clone(ids), Descriptor: descriptor},
		expiresAt: s.clock().Add(s.ttl),
	}
	return nil
}

func (s *InMemoryStore) FetchQuerySet(_ context.Context, queryID uuid.UUID) (*models.QuerySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.live(queryID)
	if !ok {
		return nil, nil
	}
	set := reg.set
	set.Identifiers = slices.Clone(reg.set.Identifiers)
	return &set, nil
}

// live returns the registration for queryID, evicting it if expired.
// Callers hold s.mu.
func (s *InMemoryStore) live(queryID uuid.UUID) (registration, bool) {
	reg, ok := s.sets[queryID]
	if !ok {
		return registration{}, false
	}
	if s.clock().After(reg.expiresAt) {
		delete(s.sets, queryID)
		return registration{}, false
	}
	return reg, true
}
