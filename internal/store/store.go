// Package store provides the SQLite-backed persistence layer: the versioned
// document table and the append-only note archive.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	kind       TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id TEXT NOT NULL,
	note_date   TEXT NOT NULL,
	raw_text    TEXT NOT NULL,
	tags        TEXT,
	extracted   TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_activity ON notes(activity_id, id);
CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at);
`

// isoLayout is a fixed-width UTC timestamp layout. Unlike RFC3339Nano it
// never trims trailing zeros, so lexicographic comparison of stored values
// matches chronological order.
const isoLayout = "2006-01-02T15:04:05.000Z"

// DB wraps a sql.DB with document and note operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// The parent directory is created if it does not exist yet. Transactions
// start immediate so the write lock is taken at BEGIN, which serializes
// read-version/write-version sequences across processes sharing the file.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3",
		path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// NowISO returns the current UTC time in the store's timestamp format.
func NowISO() string {
	return time.Now().UTC().Format(isoLayout)
}

// FormatISO renders t in the store's timestamp format.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// writeAttempts bounds the retry budget for contended writes.
const writeAttempts = 5

// withWriteRetry runs op, retrying on SQLITE_BUSY/SQLITE_LOCKED with a
// doubling timer-based delay. After the budget is exhausted the error is
// reported as apperr.ErrContention.
func (db *DB) withWriteRetry(ctx context.Context, op func() error) error {
	delay := 10 * time.Millisecond
	var err error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}
		err = op()
		if err == nil || !isBusy(err) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", apperr.ErrContention, writeAttempts, err)
}

// isBusy reports whether err is a transient SQLite lock error.
func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
