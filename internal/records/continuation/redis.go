// Package continuation remembers resolved query sets so a query can be paged
// after its first batch.
package continuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

const (
	// DefaultTTL bounds how long a registered query can be continued.
	DefaultTTL = 30 * time.Minute

	querySetKeyPrefix = "qc:set:"
)

// RedisStore keeps query sets as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) IsRegistered(ctx context.Context, queryID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, querySetKeyPrefix+queryID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check query set %s: %w: %v", queryID, sentinel.ErrUnavailable, err)
	}
	return n > 0, nil
}

// RegisterQuerySet stores the set once; registering the same query id again
// before it expires fails with sentinel.ErrConflict.
func (s *RedisStore) RegisterQuerySet(ctx context.Context, queryID uuid.UUID, ids []models.RecordIdentifier, descriptor models.QueryDescriptor) error {
	payload, err := json.Marshal(models.QuerySet{QueryID: queryID, Identifiers: ids, Descriptor: descriptor})
	if err != nil {
		return fmt.Errorf("encode query set %s: %w", queryID, sentinel.ErrDataFault)
	}

	ok, err := s.client.SetNX(ctx, querySetKeyPrefix+queryID.String(), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("register query set %s: %w: %v", queryID, sentinel.ErrUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("query set %s: %w", queryID, sentinel.ErrConflict)
	}
	return nil
}

// FetchQuerySet returns nil when the query is unknown or expired.
func (s *RedisStore) FetchQuerySet(ctx context.Context, queryID uuid.UUID) (*models.QuerySet, error) {
	raw, err := s.client.Get(ctx, querySetKeyPrefix+queryID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch query set %s: %w: %v", queryID, sentinel.ErrUnavailable, err)
	}

	var set models.QuerySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode query set %s: %w", queryID, sentinel.ErrDataFault)
	}
	return &set, nil
}
