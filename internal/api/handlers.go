package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/athleteservice"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *athleteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *athleteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrContention):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage busy, retry later"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetDocument handles GET /api/{profile|goals|policies}.
//
//	@Summary		Get a versioned document by kind
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	Document
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/{kind} [get]
func (h *Handler) GetDocument(kind models.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.svc.GetDocument(r.Context(), kind)
		if err != nil {
			writeError(w, "get "+string(kind), err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// UpsertProfile handles PUT /api/profile.
//
//	@Summary		Create or update the athlete profile
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.AthleteProfile	true	"Profile payload"
//	@Success		200		{object}	DocumentMeta
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profile [put]
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.AthleteProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	meta, err := h.svc.UpsertProfile(r.Context(), &profile)
	if err != nil {
		writeError(w, "upsert profile", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// UpsertGoals handles PUT /api/goals.
//
//	@Summary		Create or update athlete goals
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.AthleteGoals	true	"Goals payload"
//	@Success		200		{object}	DocumentMeta
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals [put]
func (h *Handler) UpsertGoals(w http.ResponseWriter, r *http.Request) {
	var goals models.AthleteGoals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	meta, err := h.svc.UpsertGoals(r.Context(), &goals)
	if err != nil {
		writeError(w, "upsert goals", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// UpsertPolicies handles PUT /api/policies.
//
//	@Summary		Create or update athlete policies
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.AthletePolicies	true	"Policies payload"
//	@Success		200		{object}	DocumentMeta
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/policies [put]
func (h *Handler) UpsertPolicies(w http.ResponseWriter, r *http.Request) {
	var policies models.AthletePolicies
	if err := json.NewDecoder(r.Body).Decode(&policies); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	meta, err := h.svc.UpsertPolicies(r.Context(), &policies)
	if err != nil {
		writeError(w, "upsert policies", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// AddNote handles POST /api/notes.
//
//	@Summary		Append a note for an activity
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddNoteRequest	true	"Note input"
//	@Success		201		{object}	NoteReceipt
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	receipt, err := h.svc.AddNote(r.Context(), &models.NoteInput{
		ActivityID: req.ActivityID,
		NoteText:   req.NoteText,
		NoteDate:   req.NoteDate,
		Tags:       req.Tags,
	})
	if err != nil {
		writeError(w, "add note", err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// GetNote handles GET /api/notes/{activityID}.
//
//	@Summary		Get the latest note for an activity
//	@Tags			notes
//	@Produce		json
//	@Param			activityID	path		string	true	"Activity identifier"
//	@Success		200			{object}	models.Note
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{activityID} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")
	note, err := h.svc.GetNote(r.Context(), activityID)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search.
//
//	@Summary		Search notes by substring
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	true	"Substring to match"
//	@Param			since	query		string	false	"Inclusive lower created_at bound"
//	@Param			until	query		string	false	"Inclusive upper created_at bound"
//	@Param			limit	query		int		false	"Max results (default 50, ceiling 500)"
//	@Success		200		{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	notes, err := h.svc.SearchNotes(r.Context(), q.Get("q"), q.Get("since"), q.Get("until"), limit)
	if err != nil {
		writeError(w, "search notes", err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Notes: notes, Total: len(notes)})
}

// GetState handles GET /api/state.
//
//	@Summary		Get the current computed athlete state
//	@Tags			state
//	@Produce		json
//	@Success		200	{object}	StateDocument
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetState(r.Context())
	if err != nil {
		writeError(w, "get state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// RecomputeState handles POST /api/state/recompute.
//
//	@Summary		Recompute the athlete state from the trailing note window
//	@Tags			state
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecomputeStateRequest	false	"Options"
//	@Success		200		{object}	StateDocument
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/state/recompute [post]
func (h *Handler) RecomputeState(w http.ResponseWriter, r *http.Request) {
	var req RecomputeStateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	st, err := h.svc.RecomputeState(r.Context(), req.Since)
	if err != nil {
		writeError(w, "recompute state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
