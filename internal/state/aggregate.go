// Package state computes the rolling readiness summary from the note
// archive and persists it as a new version of the "state" document.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kerfich/athlete-context-mcp/internal/models"
	"github.com/kerfich/athlete-context-mcp/internal/store"
)

// Aggregation windows, anchored at the invocation time.
const (
	fullWindow  = 14 * 24 * time.Hour
	trendWindow = 7 * 24 * time.Hour
)

// Readiness score weights: 100 − 5·avgStress − 3·avgRpe − 8·painMax,
// clamped to [0, 100].
const (
	stressWeight  = 5
	rpeWeight     = 3
	painMaxWeight = 8
)

// Flag thresholds.
const (
	highStressThreshold = 7
	painRiskThreshold   = 5
)

// Aggregator derives AthleteState from the trailing note window.
type Aggregator struct {
	db *store.DB
}

// New creates an Aggregator over the given store.
func New(db *store.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Result carries the computed state together with its stored version.
type Result struct {
	State     models.AthleteState `json:"state"`
	Version   int64               `json:"version"`
	UpdatedAt string              `json:"updated_at"`
}

// Recompute reads the trailing 14-day note window ending at now, derives the
// athlete state, and persists it under the "state" kind. Empty history is not
// an error: every derived field degrades to absent or a zero-based default.
func (a *Aggregator) Recompute(ctx context.Context, now time.Time) (*Result, error) {
	notes, err := a.db.NotesCreatedSince(ctx, store.FormatISO(now.Add(-fullWindow)))
	if err != nil {
		return nil, fmt.Errorf("state: load window: %w", err)
	}

	st := Compute(notes, now)

	payload, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("state: marshal: %w", err)
	}
	meta, err := a.db.UpsertDocument(ctx, models.KindState, payload)
	if err != nil {
		return nil, fmt.Errorf("state: persist: %w", err)
	}
	return &Result{State: st, Version: meta.Version, UpdatedAt: meta.UpdatedAt}, nil
}

// Compute derives the athlete state from a 14-day note window ending at now.
// The 7-day trend subset is filtered from the same set by created_at rather
// than queried separately.
func Compute(notes []models.Note, now time.Time) models.AthleteState {
	cutoff7 := store.FormatISO(now.Add(-trendWindow))

	var stress7, rpe7 []float64
	for _, n := range notes {
		if n.CreatedAt < cutoff7 {
			continue
		}
		if n.Extracted.Stress != nil {
			stress7 = append(stress7, float64(*n.Extracted.Stress))
		}
		if n.Extracted.RPE != nil {
			rpe7 = append(rpe7, float64(*n.Extracted.RPE))
		}
	}

	st := models.AthleteState{
		StressTrend7d: round2(mean(stress7)),
		RPETrend7d:    round2(mean(rpe7)),
		PainWatchlist: watchlist(notes),
		Flags:         []string{},
	}

	if len(notes) > 0 {
		solo := 0
		for _, n := range notes {
			if n.Extracted.SocialContext == models.SocialSolo {
				solo++
			}
		}
		ratio := round3(float64(solo) / float64(len(notes)))
		st.SoloRatio14d = &ratio
	}

	var stress14, rpe14 []float64
	painMax := 0
	for _, n := range notes {
		if n.Extracted.Stress != nil {
			stress14 = append(stress14, float64(*n.Extracted.Stress))
		}
		if n.Extracted.RPE != nil {
			rpe14 = append(rpe14, float64(*n.Extracted.RPE))
		}
		for _, p := range n.Extracted.Pain {
			if p.Intensity > painMax {
				painMax = p.Intensity
			}
		}
	}
	avgStress := meanOrZero(stress14)
	avgRpe := meanOrZero(rpe14)

	score := 100 - stressWeight*avgStress - rpeWeight*avgRpe - float64(painMaxWeight*painMax)
	st.ReadinessSubjective = clampScore(int(math.Round(score)))

	if avgStress >= highStressThreshold {
		st.Flags = append(st.Flags, models.FlagHighStress)
	}
	if painMax >= painRiskThreshold {
		st.Flags = append(st.Flags, models.FlagPainRisk)
	}

	return st
}

// watchlist groups pain entries across the window by area and keeps the top
// 3 by occurrence count. Ties break by area name ascending so the result is
// deterministic.
func watchlist(notes []models.Note) []models.PainWatchItem {
	type acc struct {
		occ int
		sum int
	}
	counts := make(map[string]*acc)
	for _, n := range notes {
		for _, p := range n.Extracted.Pain {
			c := counts[p.Area]
			if c == nil {
				c = &acc{}
				counts[p.Area] = c
			}
			c.occ++
			c.sum += p.Intensity
		}
	}

	items := make([]models.PainWatchItem, 0, len(counts))
	for area, c := range counts {
		items = append(items, models.PainWatchItem{
			Area:         area,
			Occurrences:  c.occ,
			AvgIntensity: float64(c.sum) / float64(c.occ),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Occurrences != items[j].Occurrences {
			return items[i].Occurrences > items[j].Occurrences
		}
		return items[i].Area < items[j].Area
	})
	if len(items) > 3 {
		items = items[:3]
	}
	return items
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

func meanOrZero(vals []float64) float64 {
	if m := mean(vals); m != nil {
		return *m
	}
	return 0
}

func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
