package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "athlete-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetDocument_AbsentBeforeFirstWrite(t *testing.T) {
	db := testDB(t)
	for _, kind := range []models.DocumentKind{
		models.KindProfile, models.KindGoals, models.KindPolicies, models.KindState,
	} {
		_, err := db.GetDocument(context.Background(), kind)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetDocument(%s) = %v, want ErrNotFound", kind, err)
		}
	}
}

func TestUpsertDocument_VersionsIncrement(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	meta, err := db.UpsertDocument(ctx, models.KindProfile, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if meta.Version != 1 {
		t.Errorf("first version = %d, want 1", meta.Version)
	}

	meta, err = db.UpsertDocument(ctx, models.KindProfile, []byte(`{"a":2}`))
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if meta.Version != 2 {
		t.Errorf("second version = %d, want 2", meta.Version)
	}

	doc, err := db.GetDocument(ctx, models.KindProfile)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("stored version = %d, want 2", doc.Version)
	}
	var payload map[string]int
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["a"] != 2 {
		t.Errorf("payload a = %d, want 2 (latest write)", payload["a"])
	}
}

func TestUpsertDocument_KindsAreIndependent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := db.UpsertDocument(ctx, models.KindGoals, []byte(`{}`)); err != nil {
			t.Fatalf("UpsertDocument(goals): %v", err)
		}
	}
	meta, err := db.UpsertDocument(ctx, models.KindPolicies, []byte(`{}`))
	if err != nil {
		t.Fatalf("UpsertDocument(policies): %v", err)
	}
	if meta.Version != 1 {
		t.Errorf("policies version = %d, want 1 (independent counter)", meta.Version)
	}

	goals, err := db.GetDocument(ctx, models.KindGoals)
	if err != nil {
		t.Fatalf("GetDocument(goals): %v", err)
	}
	if goals.Version != 3 {
		t.Errorf("goals version = %d, want 3", goals.Version)
	}
}

func TestDocument_UnknownKindRejected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.GetDocument(ctx, "sessions"); err == nil {
		t.Error("GetDocument with unknown kind should fail")
	}
	if _, err := db.UpsertDocument(ctx, "sessions", []byte(`{}`)); err == nil {
		t.Error("UpsertDocument with unknown kind should fail")
	}
}

func TestUpsertDocument_UpdatedAtAdvances(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first, err := db.UpsertDocument(ctx, models.KindState, []byte(`{}`))
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	second, err := db.UpsertDocument(ctx, models.KindState, []byte(`{}`))
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if second.UpdatedAt < first.UpdatedAt {
		t.Errorf("updated_at went backwards: %s then %s", first.UpdatedAt, second.UpdatedAt)
	}
}
