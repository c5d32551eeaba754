package api

import (
	"github.com/kerfich/athlete-context-mcp/internal/athleteservice"
	"github.com/kerfich/athlete-context-mcp/internal/models"
	"github.com/kerfich/athlete-context-mcp/internal/store"
)

// AddNoteRequest is the request body for creating a note.
type AddNoteRequest struct {
	ActivityID string   `json:"activity_id" example:"run-42" validate:"required"`
	NoteText   string   `json:"note_text" example:"RPE 8/10, seul" validate:"required"`
	NoteDate   string   `json:"note_date,omitempty" example:"2026-08-30"`
	Tags       []string `json:"tags,omitempty" example:"tempo,route"`
}

// RecomputeStateRequest is the request body for triggering a state recompute.
// Since is accepted for compatibility but does not move the aggregation
// window, which is always the trailing 14 days ending now.
type RecomputeStateRequest struct {
	Since string `json:"since,omitempty" example:"2026-08-01T00:00:00.000Z"`
}

// Document is a versioned document response (aliased from the store layer).
type Document = store.Document

// DocumentMeta is the upsert response (aliased from the store layer).
type DocumentMeta = store.DocumentMeta

// NoteReceipt is the add-note response (aliased from the domain layer).
type NoteReceipt = models.NoteReceipt

// StateDocument is the computed-state response (aliased from the service layer).
type StateDocument = athleteservice.StateDocument

// SearchResponse wraps search results.
type SearchResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"2" validate:"required"`
}
