package state

import (
	"context"
	"testing"
	"time"

	"github.com/kerfich/athlete-context-mcp/internal/models"
	"github.com/kerfich/athlete-context-mcp/internal/store"
	"github.com/kerfich/athlete-context-mcp/internal/testutil"
)

func intPtr(v int) *int { return &v }

// note builds a window note created the given number of days before now.
func note(now time.Time, daysAgo int, e models.Extracted) models.Note {
	return models.Note{
		CreatedAt: store.FormatISO(now.Add(-time.Duration(daysAgo) * 24 * time.Hour)),
		Extracted: e,
	}
}

func TestCompute_StressTrend(t *testing.T) {
	now := time.Now()
	notes := []models.Note{
		note(now, 1, models.Extracted{Stress: intPtr(8), SocialContext: models.SocialUnknown}),
		note(now, 3, models.Extracted{Stress: intPtr(6), SocialContext: models.SocialUnknown}),
	}
	st := Compute(notes, now)
	if st.StressTrend7d == nil || *st.StressTrend7d != 7.00 {
		t.Fatalf("stress_trend_7d = %v, want 7.00", st.StressTrend7d)
	}
	if !hasFlag(st.Flags, models.FlagHighStress) {
		t.Errorf("flags = %v, want high_stress (avg stress >= 7)", st.Flags)
	}
}

func TestCompute_TrendUsesOnlySevenDaySubset(t *testing.T) {
	now := time.Now()
	notes := []models.Note{
		note(now, 2, models.Extracted{Stress: intPtr(4), SocialContext: models.SocialUnknown}),
		// Inside 14d, outside 7d: excluded from trend, included in readiness.
		note(now, 10, models.Extracted{Stress: intPtr(10), SocialContext: models.SocialUnknown}),
	}
	st := Compute(notes, now)
	if st.StressTrend7d == nil || *st.StressTrend7d != 4.00 {
		t.Errorf("stress_trend_7d = %v, want 4.00", st.StressTrend7d)
	}
	// Readiness uses the full window: avg stress = 7.
	if st.ReadinessSubjective != 100-5*7 {
		t.Errorf("readiness = %d, want %d", st.ReadinessSubjective, 100-5*7)
	}
}

func TestCompute_EmptyHistory(t *testing.T) {
	st := Compute(nil, time.Now())
	if st.StressTrend7d != nil || st.RPETrend7d != nil || st.SoloRatio14d != nil {
		t.Errorf("expected absent trends on empty history, got %+v", st)
	}
	if st.ReadinessSubjective != 100 {
		t.Errorf("readiness = %d, want 100", st.ReadinessSubjective)
	}
	if len(st.PainWatchlist) != 0 || len(st.Flags) != 0 {
		t.Errorf("expected empty watchlist and flags, got %+v", st)
	}
}

func TestCompute_ReadinessClampedToZero(t *testing.T) {
	now := time.Now()
	notes := []models.Note{
		note(now, 1, models.Extracted{
			Stress:        intPtr(10),
			RPE:           intPtr(10),
			SocialContext: models.SocialUnknown,
			Pain:          []models.PainEntry{{Area: "genou", Intensity: 10}},
		}),
	}
	st := Compute(notes, now)
	if st.ReadinessSubjective != 0 {
		t.Errorf("readiness = %d, want 0 (clamped)", st.ReadinessSubjective)
	}
	if !hasFlag(st.Flags, models.FlagHighStress) || !hasFlag(st.Flags, models.FlagPainRisk) {
		t.Errorf("flags = %v, want both high_stress and pain_risk", st.Flags)
	}
}

func TestCompute_SoloRatio(t *testing.T) {
	now := time.Now()
	notes := []models.Note{
		note(now, 1, models.Extracted{SocialContext: models.SocialSolo}),
		note(now, 2, models.Extracted{SocialContext: models.SocialClub}),
		note(now, 3, models.Extracted{SocialContext: models.SocialSolo}),
	}
	st := Compute(notes, now)
	if st.SoloRatio14d == nil || *st.SoloRatio14d != 0.667 {
		t.Errorf("solo_ratio_14d = %v, want 0.667", st.SoloRatio14d)
	}
}

func TestCompute_PainWatchlist(t *testing.T) {
	now := time.Now()
	pain := func(area string, intensity int) models.Extracted {
		return models.Extracted{
			SocialContext: models.SocialUnknown,
			Pain:          []models.PainEntry{{Area: area, Intensity: intensity}},
		}
	}
	notes := []models.Note{
		note(now, 1, pain("genou", 4)),
		note(now, 2, pain("genou", 6)),
		note(now, 3, pain("mollet", 2)),
		note(now, 4, pain("mollet", 2)),
		note(now, 5, pain("dos", 1)),
		note(now, 6, pain("cheville", 3)),
	}
	st := Compute(notes, now)
	if len(st.PainWatchlist) != 3 {
		t.Fatalf("len(watchlist) = %d, want 3", len(st.PainWatchlist))
	}
	// genou and mollet tie on occurrences with the rest; genou/mollet first
	// (2 occurrences each), then the single-occurrence tie breaks by name.
	if st.PainWatchlist[0].Area != "genou" || st.PainWatchlist[1].Area != "mollet" {
		t.Errorf("watchlist head = [%s %s], want [genou mollet]",
			st.PainWatchlist[0].Area, st.PainWatchlist[1].Area)
	}
	if st.PainWatchlist[2].Area != "cheville" {
		t.Errorf("watchlist[2] = %s, want cheville (name tie-break)", st.PainWatchlist[2].Area)
	}
	if st.PainWatchlist[0].AvgIntensity != 5.0 {
		t.Errorf("genou avg intensity = %v, want 5.0", st.PainWatchlist[0].AvgIntensity)
	}
}

func TestRecompute_PersistsStateDocument(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	if _, err := db.InsertNote(ctx, &models.Note{
		ActivityID: "act-1",
		RawText:    "stress 8",
		Extracted:  models.Extracted{Stress: intPtr(8), SocialContext: models.SocialSolo},
	}); err != nil {
		t.Fatalf("InsertNote: %v", err)
	}

	agg := New(db)
	res, err := agg.Recompute(ctx, time.Now())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Version != 1 {
		t.Errorf("version = %d, want 1", res.Version)
	}
	if res.State.StressTrend7d == nil || *res.State.StressTrend7d != 8.00 {
		t.Errorf("stress_trend_7d = %v, want 8.00", res.State.StressTrend7d)
	}

	doc, err := db.GetDocument(ctx, models.KindState)
	if err != nil {
		t.Fatalf("GetDocument(state): %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("stored version = %d, want 1", doc.Version)
	}

	// Second recompute bumps the state version.
	res, err = agg.Recompute(ctx, time.Now())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.Version != 2 {
		t.Errorf("version = %d, want 2", res.Version)
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
