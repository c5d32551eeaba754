package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/kerfich/athlete-context-mcp/internal/athleteservice"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *athleteservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Versioned documents.
	r.Get("/profile", h.GetDocument(models.KindProfile))
	r.Put("/profile", h.UpsertProfile)
	r.Get("/goals", h.GetDocument(models.KindGoals))
	r.Put("/goals", h.UpsertGoals)
	r.Get("/policies", h.GetDocument(models.KindPolicies))
	r.Put("/policies", h.UpsertPolicies)

	// Note archive.
	r.Post("/notes", h.AddNote)
	r.Get("/notes/{activityID}", h.GetNote)
	r.Get("/search", h.Search)

	// Computed state.
	r.Get("/state", h.GetState)
	r.Post("/state/recompute", h.RecomputeState)

	return r
}
