package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable session store. Each session is a header row plus
// one row per persisted key.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore creates/opens the session database at path. A positive ttl
// hides sessions that have not been written for longer than ttl.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create session db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One shared connection keeps writers from contending for the lock and
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			revision INTEGER NOT NULL,
			created_at_ms INTEGER NOT NULL,
			updated_at_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_values (
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (session_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS sessions_updated_idx ON sessions(updated_at_ms);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init session schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) expired(updatedAtMS int64) bool {
	return s.ttl > 0 && s.now().Sub(time.UnixMilli(updatedAtMS)) > s.ttl
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	out := &Session{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT revision, updated_at_ms FROM sessions WHERE id = ?`, id,
	).Scan(&out.Revision, &out.UpdatedAtMS)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && s.expired(out.UpdatedAtMS)) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session_values WHERE session_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load session values: %w", err)
	}
	defer rows.Close()
	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan session value: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session values: %w", err)
	}
	if err := out.apply(values); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess *Session, expectedRevision int64) (*Session, error) {
	if sess == nil || !ValidID(sess.ID) {
		return nil, ErrInvalidID
	}
	values, err := sess.Values()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current, updated int64
	exists := true
	err = tx.QueryRowContext(ctx, `SELECT revision, updated_at_ms FROM sessions WHERE id = ?`, sess.ID).Scan(&current, &updated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		return nil, fmt.Errorf("read session revision: %w", err)
	case s.expired(updated):
		// Expired rows are replaced as if they never existed.
		exists, current = false, 0
	}
	if err := checkRevision(current, exists, expectedRevision); err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	next := current + 1
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sessions (id, revision, created_at_ms, updated_at_ms) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET revision = excluded.revision, updated_at_ms = excluded.updated_at_ms`,
		sess.ID, next, now, now); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, sess.ID); err != nil {
		return nil, fmt.Errorf("clear session values: %w", err)
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_values (session_id, key, value) VALUES (?, ?, ?)`, sess.ID, k, v); err != nil {
			return nil, fmt.Errorf("write session value %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}

	stored := sess.Clone()
	stored.Revision = next
	stored.UpdatedAtMS = now
	return stored, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete session values: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

// PurgeExpired removes sessions idle for longer than the TTL and reports how
// many were removed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE session_id IN (SELECT id FROM sessions WHERE updated_at_ms < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("purge session values: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at_ms < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
