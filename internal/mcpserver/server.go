// Package mcpserver exposes the athlete context operations as MCP tools
// over the stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kerfich/athlete-context-mcp/internal/apperr"
	"github.com/kerfich/athlete-context-mcp/internal/athleteservice"
	"github.com/kerfich/athlete-context-mcp/internal/models"
)

// Server wraps the MCP server with the athlete context tools.
type Server struct {
	mcp *server.MCPServer
	svc *athleteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *athleteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"athlete-context",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("get_athlete_profile",
		mcp.WithDescription("Get the current athlete profile with its version."),
	), s.getProfile)

	s.mcp.AddTool(mcp.NewTool("upsert_athlete_profile",
		mcp.WithDescription("Create or update the athlete profile. Writes a new version."),
		mcp.WithObject("profile", mcp.Required(),
			mcp.Description("Profile payload: identity, training_pattern, injury_history, preferences, constraints")),
	), s.upsertProfile)

	s.mcp.AddTool(mcp.NewTool("get_athlete_goals",
		mcp.WithDescription("Get the current athlete training and recovery goals."),
	), s.getGoals)

	s.mcp.AddTool(mcp.NewTool("upsert_athlete_goals",
		mcp.WithDescription("Create or update athlete goals. Writes a new version."),
		mcp.WithObject("goals", mcp.Required(),
			mcp.Description("Goals payload: events (name, date, discipline, priority) and season_notes")),
	), s.upsertGoals)

	s.mcp.AddTool(mcp.NewTool("get_athlete_policies",
		mcp.WithDescription("Get the current athlete policies and preferences."),
	), s.getPolicies)

	s.mcp.AddTool(mcp.NewTool("upsert_athlete_policies",
		mcp.WithDescription("Create or update athlete policies. Writes a new version."),
		mcp.WithObject("policies", mcp.Required(),
			mcp.Description("Policies payload: rules (id, description, condition, action, severity)")),
	), s.upsertPolicies)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a subjective note for an activity. "+
			"Signals (rpe, stress, sleep, social context, pain) are extracted once at creation."),
		mcp.WithString("activity_id", mcp.Required(), mcp.Description("External activity identifier")),
		mcp.WithString("note_text", mcp.Required(), mcp.Description("Free-form note text")),
		mcp.WithString("note_date", mcp.Description("Calendar date (YYYY-MM-DD); defaults to today")),
		mcp.WithArray("tags", mcp.Description("Optional tags"),
			mcp.Items(map[string]any{"type": "string"})),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Get the most recently created note for an activity."),
		mcp.WithString("activity_id", mcp.Required(), mcp.Description("External activity identifier")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by case-insensitive substring, most recent first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to match against note text")),
		mcp.WithString("since", mcp.Description("Inclusive lower created_at bound (ISO-8601)")),
		mcp.WithString("until", mcp.Description("Inclusive upper created_at bound (ISO-8601)")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 50, ceiling 500)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_athlete_state",
		mcp.WithDescription("Get the current computed athlete state and metrics."),
	), s.getState)

	s.mcp.AddTool(mcp.NewTool("update_athlete_state",
		mcp.WithDescription("Recompute the athlete state from the trailing 14-day note window "+
			"and store it as a new version. The window is always anchored at the current time; "+
			"the since argument does not change it."),
		mcp.WithString("since", mcp.Description("Accepted for compatibility; ignored by the aggregation")),
	), s.updateState)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

// toolError maps service errors to tool results. Absent values surface as
// JSON null rather than an error, matching get-style semantics.
func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultText("null")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) getDocument(ctx context.Context, kind models.DocumentKind) (*mcp.CallToolResult, error) {
	doc, err := s.svc.GetDocument(ctx, kind)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) getProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.getDocument(ctx, models.KindProfile)
}

func (s *Server) getGoals(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.getDocument(ctx, models.KindGoals)
}

func (s *Server) getPolicies(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.getDocument(ctx, models.KindPolicies)
}

func (s *Server) upsertProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var profile models.AthleteProfile
	if err := decodeArg(req, "profile", &profile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := s.svc.UpsertProfile(ctx, &profile)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(meta), nil
}

func (s *Server) upsertGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var goals models.AthleteGoals
	if err := decodeArg(req, "goals", &goals); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := s.svc.UpsertGoals(ctx, &goals)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(meta), nil
}

func (s *Server) upsertPolicies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var policies models.AthletePolicies
	if err := decodeArg(req, "policies", &policies); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := s.svc.UpsertPolicies(ctx, &policies)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(meta), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activityID, err := req.RequireString("activity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	noteText, err := req.RequireString("note_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := models.NoteInput{
		ActivityID: activityID,
		NoteText:   noteText,
		NoteDate:   req.GetString("note_date", ""),
	}
	if raw, ok := req.GetArguments()["tags"]; ok {
		if err := decodeValue(raw, &in.Tags); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("tags: %v", err)), nil
		}
	}

	receipt, err := s.svc.AddNote(ctx, &in)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(receipt), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activityID, err := req.RequireString("activity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, activityID)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.SearchNotes(ctx,
		query,
		req.GetString("since", ""),
		req.GetString("until", ""),
		req.GetInt("limit", 0),
	)
	if err != nil {
		return toolError(err), nil
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return jsonResult(notes), nil
}

func (s *Server) getState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.GetState(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(st), nil
}

func (s *Server) updateState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.RecomputeState(ctx, req.GetString("since", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(st), nil
}

// decodeArg extracts a structured tool argument into out via JSON.
func decodeArg(req mcp.CallToolRequest, key string, out any) error {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return fmt.Errorf("required argument %q not found", key)
	}
	return decodeValue(raw, out)
}

func decodeValue(raw any, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
