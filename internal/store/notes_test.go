package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

func insertNote(t *testing.T, db *DB, activityID, text string) *models.Note {
	t.Helper()
	n, err := db.InsertNote(context.Background(), &models.Note{
		ActivityID: activityID,
		RawText:    text,
		Extracted:  models.Extracted{SocialContext: models.SocialUnknown, RawText: text},
	})
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	return n
}

func TestInsertNote_AssignsIncreasingIDs(t *testing.T) {
	db := testDB(t)
	a := insertNote(t, db, "act-1", "first")
	b := insertNote(t, db, "act-1", "second")
	if b.ID <= a.ID {
		t.Errorf("ids not increasing: %d then %d", a.ID, b.ID)
	}
	if a.CreatedAt == "" || a.NoteDate == "" {
		t.Errorf("missing timestamps: %+v", a)
	}
}

func TestInsertNote_DefaultsNoteDateToCreationDate(t *testing.T) {
	db := testDB(t)
	n := insertNote(t, db, "act-1", "sortie matinale")
	if n.NoteDate != n.CreatedAt[:10] {
		t.Errorf("note_date = %q, want creation date %q", n.NoteDate, n.CreatedAt[:10])
	}

	withDate, err := db.InsertNote(context.Background(), &models.Note{
		ActivityID: "act-1",
		NoteDate:   "2026-01-05",
		RawText:    "sortie datée",
		Extracted:  models.Extracted{SocialContext: models.SocialUnknown},
	})
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	if withDate.NoteDate != "2026-01-05" {
		t.Errorf("note_date = %q, want supplied date", withDate.NoteDate)
	}
}

func TestLatestNote_ReturnsMostRecent(t *testing.T) {
	db := testDB(t)
	insertNote(t, db, "act-1", "première impression")
	insertNote(t, db, "act-2", "autre activité")
	latest := insertNote(t, db, "act-1", "après réflexion")

	got, err := db.LatestNote(context.Background(), "act-1")
	if err != nil {
		t.Fatalf("LatestNote: %v", err)
	}
	if got.ID != latest.ID || got.RawText != "après réflexion" {
		t.Errorf("latest = %+v, want id %d", got, latest.ID)
	}
}

func TestLatestNote_AbsentActivity(t *testing.T) {
	db := testDB(t)
	_, err := db.LatestNote(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchNotes_SubstringCaseInsensitive(t *testing.T) {
	db := testDB(t)
	insertNote(t, db, "a", "Genou un peu raide")
	insertNote(t, db, "b", "tout va bien")
	insertNote(t, db, "c", "douleur au genou gauche")

	got, err := db.SearchNotes(context.Background(), "genou", "", "", 0)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Most recent first.
	if got[0].ActivityID != "c" || got[1].ActivityID != "a" {
		t.Errorf("order = [%s %s], want [c a]", got[0].ActivityID, got[1].ActivityID)
	}
}

func TestSearchNotes_RespectsLimit(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 5; i++ {
		insertNote(t, db, fmt.Sprintf("act-%d", i), "footing tranquille")
	}
	got, err := db.SearchNotes(context.Background(), "footing", "", "", 3)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestSearchNotes_DateBoundsInclusive(t *testing.T) {
	db := testDB(t)
	n := insertNote(t, db, "a", "seuil ce soir")

	got, err := db.SearchNotes(context.Background(), "seuil", n.CreatedAt, n.CreatedAt, 0)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("inclusive bounds should match the exact timestamp, got %d rows", len(got))
	}

	got, err = db.SearchNotes(context.Background(), "seuil", "", "2000-01-01T00:00:00.000Z", 0)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("until in the past should exclude the note, got %d rows", len(got))
	}
}

func TestSearchNotes_LikeWildcardsMatchLiterally(t *testing.T) {
	db := testDB(t)
	insertNote(t, db, "a", "progression 100% aujourd'hui")
	insertNote(t, db, "b", "progression lente")

	got, err := db.SearchNotes(context.Background(), "100%", "", "", 0)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(got) != 1 || got[0].ActivityID != "a" {
		t.Errorf("wildcard should be literal, got %d rows", len(got))
	}
}

func TestNote_RoundTripsTagsAndExtracted(t *testing.T) {
	db := testDB(t)
	rpe := 8
	n, err := db.InsertNote(context.Background(), &models.Note{
		ActivityID: "act-1",
		RawText:    "rpe 8, genou 4/10",
		Tags:       []string{"tempo", "route"},
		Extracted: models.Extracted{
			RPE:           &rpe,
			SocialContext: models.SocialUnknown,
			Pain:          []models.PainEntry{{Area: "genou", Intensity: 4}},
			RawText:       "rpe 8, genou 4/10",
		},
	})
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}

	got, err := db.LatestNote(context.Background(), "act-1")
	if err != nil {
		t.Fatalf("LatestNote: %v", err)
	}
	if got.ID != n.ID {
		t.Fatalf("id = %d, want %d", got.ID, n.ID)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "tempo" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Extracted.RPE == nil || *got.Extracted.RPE != 8 {
		t.Errorf("extracted rpe = %v, want 8", got.Extracted.RPE)
	}
	if len(got.Extracted.Pain) != 1 || got.Extracted.Pain[0].Area != "genou" {
		t.Errorf("extracted pain = %v", got.Extracted.Pain)
	}
}
