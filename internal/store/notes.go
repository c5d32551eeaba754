package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

// Search limits. The default applies when the caller passes limit <= 0; the
// ceiling is a hard cap regardless of what the caller asks for.
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

// InsertNote appends a note with its one-time extracted signals. The id and
// created_at are assigned here; note_date falls back to the creation date
// when empty. Rows are never updated or deleted afterwards.
func (db *DB) InsertNote(ctx context.Context, n *models.Note) (*models.Note, error) {
	now := NowISO()
	noteDate := n.NoteDate
	if noteDate == "" {
		noteDate = now[:len("2006-01-02")]
	}

	var tags sql.NullString
	if n.Tags != nil {
		b, err := json.Marshal(n.Tags)
		if err != nil {
			return nil, fmt.Errorf("store: marshal tags: %w", err)
		}
		tags = sql.NullString{String: string(b), Valid: true}
	}
	extracted, err := json.Marshal(n.Extracted)
	if err != nil {
		return nil, fmt.Errorf("store: marshal extracted: %w", err)
	}

	var id int64
	err = db.withWriteRetry(ctx, func() error {
		res, err := db.conn.ExecContext(ctx, `
			INSERT INTO notes (activity_id, note_date, raw_text, tags, extracted, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, n.ActivityID, noteDate, n.RawText, tags, string(extracted), now)
		if err != nil {
			return fmt.Errorf("store: insert note: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("store: note id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inserted := *n
	inserted.ID = id
	inserted.NoteDate = noteDate
	inserted.CreatedAt = now
	return &inserted, nil
}

// LatestNote returns the most recently created note for the activity, ties
// broken by highest id. Returns apperr.ErrNotFound when the activity has no
// notes.
func (db *DB) LatestNote(ctx context.Context, activityID string) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, activity_id, note_date, raw_text, tags, extracted, created_at
		FROM notes
		WHERE activity_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, activityID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest note: %w", err)
	}
	return n, nil
}

// SearchNotes returns notes whose raw text contains query (case-insensitive
// substring), most recent first. since/until are inclusive created_at bounds
// in the store's ISO-8601 format; empty strings disable them.
func (db *DB) SearchNotes(ctx context.Context, query, since, until string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	sqlText := `
		SELECT id, activity_id, note_date, raw_text, tags, extracted, created_at
		FROM notes
		WHERE raw_text LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeLike(query) + "%"}
	if since != "" {
		sqlText += ` AND created_at >= ?`
		args = append(args, since)
	}
	if until != "" {
		sqlText += ` AND created_at <= ?`
		args = append(args, until)
	}
	sqlText += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: search notes: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// NotesCreatedSince returns all notes with created_at >= since, most recent
// first, with their extracted signals decoded. Used by the state aggregator.
func (db *DB) NotesCreatedSince(ctx context.Context, since string) ([]models.Note, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, activity_id, note_date, raw_text, tags, extracted, created_at
		FROM notes
		WHERE created_at >= ?
		ORDER BY created_at DESC, id DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("store: notes since: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: notes since: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (*models.Note, error) {
	var (
		n         models.Note
		tags      sql.NullString
		extracted string
	)
	if err := r.Scan(&n.ID, &n.ActivityID, &n.NoteDate, &n.RawText, &tags, &extracted, &n.CreatedAt); err != nil {
		return nil, err
	}
	if tags.Valid {
		if err := json.Unmarshal([]byte(tags.String), &n.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(extracted), &n.Extracted); err != nil {
		return nil, fmt.Errorf("decode extracted: %w", err)
	}
	return &n, nil
}

// escapeLike escapes LIKE wildcards so query text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
