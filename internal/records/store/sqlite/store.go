// Package sqlite stores records as JSON documents in an embedded SQLite
// database, keyed by (domain, identifier).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/sentinel"
	txcontext "recordgate/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	domain     TEXT    NOT NULL,
	identifier TEXT    NOT NULL,
	version    INTEGER NOT NULL,
	mode       TEXT    NOT NULL,
	document   TEXT    NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (domain, identifier),
	CHECK (domain <> '' AND identifier <> '')
);
CREATE INDEX IF NOT EXISTS idx_records_updated_at ON records(updated_at);
`

// Store is a SQLite-backed record store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	// WAL for concurrent readers, a busy timeout instead of immediate lock errors.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(2 * time.Hour)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
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

	now := s.now().UTC()
	res, err := txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO records (domain, identifier, version, mode, document, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT (domain, identifier) DO NOTHING`,
		stored.ID.Domain, stored.ID.Identifier, string(mode), string(doc), now, now,
	)
	if err != nil {
		return models.RecordIdentifier{}, fmt.Errorf("insert record %s: %w", stored.ID, translate(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.RecordIdentifier{}, fmt.Errorf("record %s already registered: %w", stored.ID, sentinel.ErrConflict)
	}
	return stored.ID, nil
}

func (s *Store) Update(ctx context.Context, record *models.Record, mode models.PersistenceMode) (models.RecordIdentifier, error) {
	if record == nil {
		return models.RecordIdentifier{}, fmt.Errorf("nil record: %w", sentinel.ErrDataFault)
	}

	var updated models.RecordIdentifier
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.ExecutorFor(ctx, s.db)

		var version int
		var doc string
		err := exec.QueryRowContext(ctx,
			`SELECT version, document FROM records WHERE domain = ? AND identifier = ?`,
			record.ID.Domain, record.ID.Identifier,
		).Scan(&version, &doc)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record %s is not registered: %w", record.ID, sentinel.ErrMissingKey)
		}
		if err != nil {
			return translate(err)
		}

		var current models.Record
		if err := json.Unmarshal([]byte(doc), &current); err != nil {
			return fmt.Errorf("decode record %s: %w", record.ID, sentinel.ErrDataFault)
		}

		next := record.Clone()
		next.Supersede(&current, s.now())
		next.ID.Version = strconv.Itoa(version + 1)
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", record.ID, sentinel.ErrDataFault)
		}

		if err := s.replaceVersion(ctx, exec, record.ID, version, mode, encoded); err != nil {
			return err
		}
		updated = next.ID
		return nil
	})
	if err != nil {
		return models.RecordIdentifier{}, fmt.Errorf("update record %s: %w", record.ID, err)
	}
	return updated, nil
}

// replaceVersion swaps the document stored at version for the next one. It
// fails with ErrConflict unless exactly that version was replaced.
func (s *Store) replaceVersion(ctx context.Context, exec txcontext.Executor, id models.RecordIdentifier, version int, mode models.PersistenceMode, encoded []byte) error {
	res, err := exec.ExecContext(ctx, `
		UPDATE records SET version = ?, mode = ?, document = ?, updated_at = ?
		WHERE domain = ? AND identifier = ? AND version = ?`,
		version+1, string(mode), string(encoded), s.now().UTC(),
		id.Domain, id.Identifier, version,
	)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if n != 1 {
		return fmt.Errorf("record %s changed since version %d: %w", id, version, sentinel.ErrConflict)
	}
	return nil
}

func (s *Store) FetchOne(ctx context.Context, id models.RecordIdentifier, summary bool) (*models.Record, error) {
	var version int
	var doc string
	err := txcontext.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT version, document FROM records WHERE domain = ? AND identifier = ?`,
		id.Domain, id.Identifier,
	).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record %s: %w", id, translate(err))
	}
	if id.Version != "" && id.Version != strconv.Itoa(version) {
		return nil, nil
	}

	var record models.Record
	if err := json.Unmarshal([]byte(doc), &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, sentinel.ErrDataFault)
	}
	if summary {
		record.History = nil
		record.Annotations = nil
	}
	return &record, nil
}

// translate maps SQLite result codes onto the infrastructure sentinels.
func translate(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return fmt.Errorf("%w: %v", sentinel.ErrConflict, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", sentinel.ErrMissingKey, err)
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return fmt.Errorf("%w: %v", sentinel.ErrConstraint, err)
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	default:
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return fmt.Errorf("%w: %v", sentinel.ErrConstraint, err)
		}
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
}
