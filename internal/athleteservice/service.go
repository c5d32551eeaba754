// Package athleteservice coordinates validation, signal extraction, and
// store operations behind the MCP and REST surfaces.
package athleteservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/extract"
	"github.com/kerfich/athlete-context-mcp/internal/models"
	"github.com/kerfich/athlete-context-mcp/internal/state"
	"github.com/kerfich/athlete-context-mcp/internal/store"
)

// Service exposes the athlete context operations.
type Service struct {
	db  *store.DB
	agg *state.Aggregator
	now func() time.Time
}

// NewService creates a new athlete context service.
func NewService(db *store.DB) *Service {
	return &Service{
		db:  db,
		agg: state.New(db),
		now: time.Now,
	}
}

// GetDocument returns the current versioned document of the given kind.
// Returns apperr.ErrNotFound when the kind was never written.
func (s *Service) GetDocument(ctx context.Context, kind models.DocumentKind) (*store.Document, error) {
	return s.db.GetDocument(ctx, kind)
}

// UpsertProfile validates and stores a new profile version.
func (s *Service) UpsertProfile(ctx context.Context, p *models.AthleteProfile) (*store.DocumentMeta, error) {
	return s.upsertPayload(ctx, models.KindProfile, p, p.Validate())
}

// UpsertGoals validates and stores a new goals version.
func (s *Service) UpsertGoals(ctx context.Context, g *models.AthleteGoals) (*store.DocumentMeta, error) {
	return s.upsertPayload(ctx, models.KindGoals, g, g.Validate())
}

// UpsertPolicies validates and stores a new policies version.
func (s *Service) UpsertPolicies(ctx context.Context, p *models.AthletePolicies) (*store.DocumentMeta, error) {
	return s.upsertPayload(ctx, models.KindPolicies, p, p.Validate())
}

func (s *Service) upsertPayload(ctx context.Context, kind models.DocumentKind, payload any, verr error) (*store.DocumentMeta, error) {
	if verr != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrValidation, kind, verr)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	return s.db.UpsertDocument(ctx, kind, raw)
}

// AddNote validates the input, runs extraction on the note text, and appends
// the note to the archive. The extracted signals are computed exactly once
// here and never revisited.
func (s *Service) AddNote(ctx context.Context, in *models.NoteInput) (*models.NoteReceipt, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: note: %v", apperr.ErrValidation, err)
	}
	extracted := extract.FromText(in.NoteText)
	note, err := s.db.InsertNote(ctx, &models.Note{
		ActivityID: in.ActivityID,
		NoteDate:   in.NoteDate,
		RawText:    in.NoteText,
		Tags:       in.Tags,
		Extracted:  extracted,
	})
	if err != nil {
		return nil, err
	}
	return &models.NoteReceipt{
		NoteID:     note.ID,
		ActivityID: note.ActivityID,
		Extracted:  note.Extracted,
		CreatedAt:  note.CreatedAt,
	}, nil
}

// GetNote returns the most recently created note for the activity.
func (s *Service) GetNote(ctx context.Context, activityID string) (*models.Note, error) {
	if activityID == "" {
		return nil, fmt.Errorf("%w: activity_id is required", apperr.ErrValidation)
	}
	return s.db.LatestNote(ctx, activityID)
}

// SearchNotes returns notes whose text contains query, most recent first.
func (s *Service) SearchNotes(ctx context.Context, query, since, until string, limit int) ([]models.Note, error) {
	return s.db.SearchNotes(ctx, query, since, until, limit)
}

// StateDocument is the current computed state with its version metadata.
type StateDocument struct {
	State     models.AthleteState `json:"state"`
	Version   int64               `json:"version"`
	UpdatedAt string              `json:"updated_at"`
}

// GetState returns the current state document, or apperr.ErrNotFound when
// the state was never computed.
func (s *Service) GetState(ctx context.Context) (*StateDocument, error) {
	doc, err := s.db.GetDocument(ctx, models.KindState)
	if err != nil {
		return nil, err
	}
	var st models.AthleteState
	if err := json.Unmarshal(doc.Payload, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &StateDocument{State: st, Version: doc.Version, UpdatedAt: doc.UpdatedAt}, nil
}

// RecomputeState runs the aggregator over the trailing window and persists a
// new state version. The since hint is accepted for compatibility with the
// original tool signature but does not move the window, which is always the
// trailing 14 days ending now.
func (s *Service) RecomputeState(ctx context.Context, _ string) (*StateDocument, error) {
	res, err := s.agg.Recompute(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return &StateDocument{State: res.State, Version: res.Version, UpdatedAt: res.UpdatedAt}, nil
}
