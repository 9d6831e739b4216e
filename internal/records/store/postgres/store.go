// Package postgres stores records as JSONB documents in PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
)

// Schema creates the records table.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
	domain     TEXT        NOT NULL,
	identifier TEXT        NOT NULL,
	version    INTEGER     NOT NULL,
	mode       TEXT        NOT NULL,
	document   JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (domain, identifier),
	CONSTRAINT records_key_present CHECK (domain <> '' AND identifier <> '')
);
CREATE INDEX IF NOT EXISTS idx_records_document_type ON records ((document->>'type'));
`

// Store is a PostgreSQL-backed record store.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Connect opens a pool for dsn and verifies it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(pool), nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate records schema: %w", err)
	}
	return nil
}

// Health pings the pool.
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Store(ctx context.Context, record *models.Record, mode models.PersistenceMode) (models.RecordIdentifier, error) {
	if record == nil {
		return models.RecordIdentifier{}, fmt.Errorf("nil record: %w", sentinel.ErrDataFault)
	}
	stored := record.Clone()
	stored.ID.Version = "1"
	doc, err := json.Marshal(stored)
	if err != nil {
		return models.RecordIdentifier{}, fmt.Errorf("encode record %s: %w", stored.ID, sentinel.ErrDataFault)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (domain, identifier, version, mode, document, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $4::jsonb, $5, $5)`,
		stored.ID.Domain, stored.ID.Identifier, string(mode), string(doc), s.now().UTC(),
	)
	if err != nil {
		return models.RecordIdentifier{}, fmt.Errorf("insert record %s: %w", stored.ID, translate(err))
	}
	return stored.ID, nil
}

func (s *Store) Update(ctx context.Context, record *models.Record, mode models.PersistenceMode) (models.RecordIdentifier, error) {
	if record == nil {
		return models.RecordIdentifier{}, fmt.Errorf("nil record: %w", sentinel.ErrDataFault)
	}

	var updated models.RecordIdentifier
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var version int
		var doc []byte
		err := tx.QueryRow(ctx,
			`SELECT version, document FROM records WHERE domain = $1 AND identifier = $2 FOR UPDATE`,
			record.ID.Domain, record.ID.Identifier,
		).Scan(&version, &doc)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("record %s is not registered: %w", record.ID, sentinel.ErrMissingKey)
		}
		if err != nil {
			return translate(err)
		}

		var current models.Record
		if err := json.Unmarshal(doc, &current); err != nil {
			return fmt.Errorf("decode record %s: %w", record.ID, sentinel.ErrDataFault)
		}

		next := record.Clone()
		next.Supersede(&current, s.now())
		next.ID.Version = strconv.Itoa(version + 1)
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", record.ID, sentinel.ErrDataFault)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE records SET version = $1, mode = $2, document = $3::jsonb, updated_at = $4
			WHERE domain = $5 AND identifier = $6`,
			version+1, string(mode), string(encoded), s.now().UTC(),
			record.ID.Domain, record.ID.Identifier,
		); err != nil {
			return translate(err)
		}
		updated = next.ID
		return nil
	})
	if err != nil {
		return models.RecordIdentifier{}, fmt.Errorf("update record %s: %w", record.ID, err)
	}
	return updated, nil
}

func (s *Store) FetchOne(ctx context.Context, id models.RecordIdentifier, summary bool) (*models.Record, error) {
	var version int
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT version, document FROM records WHERE domain = $1 AND identifier = $2`,
		id.Domain, id.Identifier,
	).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record %s: %w", id, translate(err))
	}
	if id.Version != "" && id.Version != strconv.Itoa(version) {
		return nil, nil
	}

	var record models.Record
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, sentinel.ErrDataFault)
	}
	if summary {
		record.History = nil
		record.Annotations = nil
	}
	return &record, nil
}

// translate maps PostgreSQL SQLSTATE codes onto the infrastructure sentinels.
// Errors that already carry a sentinel pass through.
func translate(err error) error {
	for _, known := range []error{sentinel.ErrConflict, sentinel.ErrMissingKey, sentinel.ErrConstraint, sentinel.ErrDataFault} {
		if errors.Is(err, known) {
			return err
		}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	switch {
	case pgErr.Code == "23505":
		return fmt.Errorf("%w: %s", sentinel.ErrConflict, pgErr.Message)
	case pgErr.Code == "23503":
		return fmt.Errorf("%w: %s", sentinel.ErrMissingKey, pgErr.Message)
	case len(pgErr.Code) == 5 && pgErr.Code[:2] == "23":
		return fmt.Errorf("%w: %s", sentinel.ErrConstraint, pgErr.Message)
	case len(pgErr.Code) == 5 && pgErr.Code[:2] == "22":
		return fmt.Errorf("%w: %s", sentinel.ErrDataFault, pgErr.Message)
	default:
		return fmt.Errorf("%w: %s", sentinel.ErrUnavailable, pgErr.Message)
	}
}
