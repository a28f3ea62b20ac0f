package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary

	"github.com/iburimskiy/window-sync/internal/logging"
)

const defaultPollInterval = 50 * time.Millisecond

const staleAfter = 24 * time.Hour

// One row per (key, writer) so a handle's own write never hides a peer's
// write that landed just before it.
const schema = `CREATE TABLE IF NOT EXISTS entries (
	key     TEXT NOT NULL,
	origin  TEXT NOT NULL,
	value   BLOB NOT NULL,
	rev     INTEGER NOT NULL,
	updated INTEGER NOT NULL,
	PRIMARY KEY (key, origin)
)`

// rev is a store-wide counter so a reader can tell a new write from the
// one it already saw, even when the bytes are identical.
const upsert = `INSERT INTO entries (key, origin, value, rev, updated)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(rev), 0) + 1 FROM entries), ?)
ON CONFLICT(key, origin) DO UPDATE SET
	value = excluded.value,
	rev = excluded.rev,
	updated = excluded.updated`

// SQLite is a Store backed by a database file that every instance on the
// machine opens. Writers are told apart by a per-handle origin token.
type SQLite struct {
	db     *sql.DB
	path   string
	origin string
	poll   time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

var _ Store = (*SQLite)(nil)

// Option configures OpenSQLite.
type Option func(*SQLite)

// WithPollInterval sets how often watchers re-read the database when no
// file change notification arrives.
func WithPollInterval(d time.Duration) Option {
	return func(s *SQLite) {
		if d > 0 {
			s.poll = d
		}
	}
}

// OpenSQLite opens (creating if needed) the shared store at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	const dbDirPerm = 0o750
	log := logging.FromContext(ctx)

	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dbDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection per process; SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	// Rows of instances that exited without cleaning up.
	cutoff := time.Now().Add(-staleAfter).UnixMilli()
	if _, err := db.ExecContext(ctx, `DELETE FROM entries WHERE updated < ?`, cutoff); err != nil {
		log.Warn().Err(err).Msg("failed to prune stale entries")
	}

	s := &SQLite{
		db:     db,
		path:   path,
		origin: uuid.NewString(),
		poll:   defaultPollInterval,
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	log.Info().Str("path", path).Dur("poll", s.poll).Msg("shared store opened")
	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	if s.isClosed() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, upsert, key, s.origin, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	e, err := s.latest(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

func (s *SQLite) Watch(ctx context.Context, key string, fn func(value []byte)) error {
	if s.isClosed() {
		return ErrClosed
	}
	log := logging.FromContext(ctx)

	// Values already present are not replayed.
	var seen int64
	switch e, err := s.latest(ctx, key); {
	case err == nil:
		seen = e.rev
	case !errors.Is(err, ErrNotFound):
		return err
	}

	wake, err := watchFile(ctx, s.path)
	if err != nil {
		log.Warn().Err(err).Msg("file notifications unavailable, polling only")
	}

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closed:
			return ErrClosed
		case <-ticker.C:
		case <-wake:
		}

		e, err := s.newerFromOthers(ctx, key, seen)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, ErrNotFound) {
				log.Debug().Err(err).Str("key", key).Msg("store read failed")
			}
			continue
		}
		seen = e.rev
		fn(e.value)
	}
}

// Close removes this handle's rows and closes the database.
func (s *SQLite) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		_, _ = s.db.Exec(`DELETE FROM entries WHERE origin = ?`, s.origin)
		err = s.db.Close()
	})
	return err
}

type entry struct {
	value  []byte
	origin string
	rev    int64
}

// latest returns the newest value of key from any writer.
func (s *SQLite) latest(ctx context.Context, key string) (entry, error) {
	return s.scan(s.db.QueryRowContext(ctx,
		`SELECT value, origin, rev FROM entries WHERE key = ? ORDER BY rev DESC LIMIT 1`, key), key)
}

// newerFromOthers returns the newest value of key written by another handle
// after revision seen.
func (s *SQLite) newerFromOthers(ctx context.Context, key string, seen int64) (entry, error) {
	return s.scan(s.db.QueryRowContext(ctx,
		`SELECT value, origin, rev FROM entries
		WHERE key = ? AND origin <> ? AND rev > ?
		ORDER BY rev DESC LIMIT 1`, key, s.origin, seen), key)
}

func (s *SQLite) scan(row *sql.Row, key string) (entry, error) {
	var e entry
	if err := row.Scan(&e.value, &e.origin, &e.rev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry{}, ErrNotFound
		}
		return entry{}, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return e, nil
}

func (s *SQLite) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
