package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/rutina/internal/catalog"
	"github.com/joescharf/rutina/internal/engine"
	"github.com/joescharf/rutina/internal/history"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/state"
)

const defaultHistoryLimit = 10

// Server exposes the workout engine as MCP tools. The engine lives as long
// as the server, so undo tokens armed by rutina_complete_day can be consumed
// by a later rutina_undo_completion call.
type Server struct {
	engine  *engine.Engine
	catalog *catalog.Catalog
	history *history.Store
	state   *state.Repo
	version string
}

// NewServer creates the MCP server wrapper with all required dependencies.
func NewServer(eng *engine.Engine, cat *catalog.Catalog, hist *history.Store, repo *state.Repo, version string) *Server {
	return &Server{
		engine:  eng,
		catalog: cat,
		history: hist,
		state:   repo,
		version: version,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("rutina", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listRoutinesTool())
	srv.AddTool(s.dayStatusTool())
	srv.AddTool(s.toggleExerciseTool())
	srv.AddTool(s.completeDayTool())
	srv.AddTool(s.undoCompletionTool())
	srv.AddTool(s.uncompleteDayTool())
	srv.AddTool(s.historyTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// rutina_list_routines
func (s *Server) listRoutinesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_list_routines",
		mcp.WithDescription("List the routine catalog. Returns a JSON array with id, name, goal, level, focus areas, sessions per week, the scheduled days and whether the routine is selected."),
		mcp.WithBoolean("recommended", mcp.Description("Only return the routines recommended for the user profile")),
	)
	return tool, s.handleListRoutines
}

func (s *Server) handleListRoutines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.state.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load state: %v", err)), nil
	}

	routines := s.catalog.Routines()
	if request.GetBool("recommended", false) {
		profile, ok, err := s.state.Profile(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}
		var p *models.UserProfile
		if ok {
			p = &profile
		}
		routines = catalog.Recommend(p, routines)
	}

	type routineOut struct {
		ID              string   `json:"id"`
		Name            string   `json:"name"`
		Goal            string   `json:"goal"`
		Level           string   `json:"level"`
		FocusAreas      []string `json:"focus_areas"`
		SessionsPerWeek int      `json:"sessions_per_week"`
		Days            []string `json:"days"`
		Selected        bool     `json:"selected"`
	}

	out := make([]routineOut, len(routines))
	for i, r := range routines {
		days := make([]string, len(r.Workouts))
		for j, w := range r.Workouts {
			days[j] = w.Day
		}
		out[i] = routineOut{
			ID:              r.ID,
			Name:            r.Name,
			Goal:            string(r.Goal),
			Level:           string(r.Level),
			FocusAreas:      r.FocusAreas,
			SessionsPerWeek: r.SessionsPerWeek,
			Days:            days,
			Selected:        r.ID == st.SelectedRoutineID,
		}
	}

	return jsonResult(out, "routines")
}

// rutina_day_status
func (s *Server) dayStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_day_status",
		mcp.WithDescription("Get the checklist of a routine day for the current week: each exercise with effective sets/reps and whether it is done, the day state (untouched, partial, all_done, logged) and any logged sessions. Without a weekday, returns every scheduled day of the routine."),
		mcp.WithString("routine", mcp.Description("Routine id (default: the selected routine)")),
		mcp.WithString("weekday", mcp.Description("Weekday name in Spanish or English, e.g. Lunes or monday")),
	)
	return tool, s.handleDayStatus
}

func (s *Server) handleDayStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routineID, errResult := s.resolveRoutine(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	weekday := request.GetString("weekday", "")
	if weekday == "" {
		days, err := s.engine.WeekStatus(ctx, routineID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get week status: %v", err)), nil
		}
		return jsonResult(days, "week status")
	}

	ds, err := s.engine.DayStatus(ctx, routineID, weekday)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get day status: %v", err)), nil
	}
	return jsonResult(ds, "day status")
}

// rutina_toggle_exercise
func (s *Server) toggleExerciseTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_toggle_exercise",
		mcp.WithDescription("Tick or untick one exercise of a routine day. Logged days and exercises the day does not schedule are left unchanged (changed=false)."),
		mcp.WithString("routine", mcp.Description("Routine id (default: the selected routine)")),
		mcp.WithString("weekday", mcp.Required(), mcp.Description("Weekday name, e.g. Lunes")),
		mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id, e.g. back-squat")),
	)
	return tool, s.handleToggleExercise
}

func (s *Server) handleToggleExercise(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekday, err := request.RequireString("weekday")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: weekday"), nil
	}
	exerciseID, err := request.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: exercise"), nil
	}
	routineID, errResult := s.resolveRoutine(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	res, err := s.engine.ToggleExercise(ctx, routineID, weekday, exerciseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle exercise: %v", err)), nil
	}
	return jsonResult(res, "toggle result")
}

// rutina_complete_day
func (s *Server) completeDayTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_complete_day",
		mcp.WithDescription("Log the ticked exercises of a routine day as a workout session and clear its checklist. The completion can be reverted with rutina_undo_completion for a few seconds."),
		mcp.WithString("routine", mcp.Description("Routine id (default: the selected routine)")),
		mcp.WithString("weekday", mcp.Required(), mcp.Description("Weekday name, e.g. Lunes")),
		mcp.WithString("title", mcp.Description("Workout title for the session note (default: the day's title)")),
	)
	return tool, s.handleCompleteDay
}

func (s *Server) handleCompleteDay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekday, err := request.RequireString("weekday")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: weekday"), nil
	}
	routineID, errResult := s.resolveRoutine(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	session, err := s.engine.PromoteDay(ctx, routineID, weekday, request.GetString("title", ""))
	if errors.Is(err, engine.ErrDayLogged) {
		return mcp.NewToolResultError(fmt.Sprintf("%s is already logged; use rutina_uncomplete_day first", weekday)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete day: %v", err)), nil
	}
	if session == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Nothing to log: no exercises are ticked on %s.", weekday)), nil
	}

	result := map[string]any{"session": session}
	if tok := s.engine.PendingUndo(); tok != nil {
		result["undo_expires_at"] = tok.ExpiresAt
	}
	return jsonResult(result, "session")
}

// rutina_undo_completion
func (s *Server) undoCompletionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_undo_completion",
		mcp.WithDescription("Revert the most recent rutina_complete_day while its undo window is open: deletes the session and restores the ticked exercises."),
	)
	return tool, s.handleUndoCompletion
}

func (s *Server) handleUndoCompletion(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	undone, err := s.engine.ConsumeUndoToken(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to undo: %v", err)), nil
	}
	if !undone {
		return mcp.NewToolResultText("Nothing to undo."), nil
	}
	return mcp.NewToolResultText("Completion undone; checklist restored."), nil
}

// rutina_uncomplete_day
func (s *Server) uncompleteDayTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_uncomplete_day",
		mcp.WithDescription("Delete every session logged for a routine day this week. The checklist is not restored."),
		mcp.WithString("routine", mcp.Description("Routine id (default: the selected routine)")),
		mcp.WithString("weekday", mcp.Required(), mcp.Description("Weekday name, e.g. Lunes")),
	)
	return tool, s.handleUncompleteDay
}

func (s *Server) handleUncompleteDay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekday, err := request.RequireString("weekday")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: weekday"), nil
	}
	routineID, errResult := s.resolveRoutine(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	n, err := s.engine.UnpromoteDay(ctx, routineID, weekday)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to uncomplete day: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed %d session(s) for %s.", n, weekday)), nil
}

// rutina_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("rutina_history",
		mcp.WithDescription("List logged workout sessions, most recent first."),
		mcp.WithString("routine", mcp.Description("Only sessions of this routine id")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions (default: 10)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.history.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list history: %v", err)), nil
	}

	routineID := request.GetString("routine", "")
	limit := request.GetInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be a positive integer"), nil
	}

	out := make([]models.WorkoutSession, 0, min(limit, len(sessions)))
	for _, sess := range sessions {
		if len(out) >= limit {
			break
		}
		if routineID != "" && sess.RoutineID != routineID {
			continue
		}
		out = append(out, sess)
	}
	return jsonResult(out, "history")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// resolveRoutine returns the "routine" argument or the selected routine.
func (s *Server) resolveRoutine(ctx context.Context, request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	id := request.GetString("routine", "")
	if id == "" {
		st, err := s.state.Load(ctx)
		if err != nil {
			return "", mcp.NewToolResultError(fmt.Sprintf("failed to load state: %v", err))
		}
		id = st.SelectedRoutineID
	}
	if id == "" {
		return "", mcp.NewToolResultError("no routine given and none selected")
	}
	if _, err := s.catalog.Routine(id); err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("routine not found: %s", id))
	}
	return id, nil
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal %s: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
