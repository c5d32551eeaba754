package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

// Document is a versioned singleton row.
type Document struct {
	Kind      models.DocumentKind `json:"kind"`
	Version   int64               `json:"version"`
	Payload   json.RawMessage     `json:"data"`
	UpdatedAt string              `json:"updated_at"`
}

// DocumentMeta is the result of an upsert.
type DocumentMeta struct {
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

// GetDocument returns the current document of the given kind, or
// apperr.ErrNotFound when the kind was never written.
func (db *DB) GetDocument(ctx context.Context, kind models.DocumentKind) (*Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("store: unknown document kind %q", kind)
	}
	doc := Document{Kind: kind}
	var payload string
	err := db.conn.QueryRowContext(ctx,
		`SELECT version, payload, updated_at FROM documents WHERE kind = ?`, string(kind)).
		Scan(&doc.Version, &payload, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document %s: %w", kind, err)
	}
	doc.Payload = json.RawMessage(payload)
	return &doc, nil
}

// UpsertDocument writes a new version of the given kind. The current version
// is read and the successor written inside one immediate transaction, so two
// concurrent upserts of the same kind cannot both commit the same version.
// Overlapping upserts are last-writer-wins; no conflict token is exposed.
func (db *DB) UpsertDocument(ctx context.Context, kind models.DocumentKind, payload []byte) (*DocumentMeta, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("store: unknown document kind %q", kind)
	}
	var meta *DocumentMeta
	err := db.withWriteRetry(ctx, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store: begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // best-effort on failure path

		var current int64
		err = tx.QueryRowContext(ctx,
			`SELECT version FROM documents WHERE kind = ?`, string(kind)).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("store: read version: %w", err)
		}

		next := current + 1
		now := NowISO()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (kind, version, payload, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(kind) DO UPDATE SET
				version    = excluded.version,
				payload    = excluded.payload,
				updated_at = excluded.updated_at
		`, string(kind), next, string(payload), now)
		if err != nil {
			return fmt.Errorf("store: upsert document %s: %w", kind, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: commit: %w", err)
		}
		meta = &DocumentMeta{Version: next, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}
