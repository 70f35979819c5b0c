package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joescharf/rutina/internal/catalog"
	"github.com/joescharf/rutina/internal/engine"
	"github.com/joescharf/rutina/internal/history"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/state"
	"github.com/joescharf/rutina/internal/stats"
	"github.com/joescharf/rutina/internal/timer"
)

const defaultHistoryLimit = 20

// Server provides the REST API handlers.
type Server struct {
	engine  *engine.Engine
	catalog *catalog.Catalog
	history *history.Store
	state   *state.Repo
	timer   *timer.Controller
	stats   *stats.Calculator

	// Clock is used for stats and timer requests; tests replace it.
	Clock func() time.Time
}

// NewServer creates a new API server. clock is the shared stopwatch; the
// server owns its rest countdown.
func NewServer(eng *engine.Engine, cat *catalog.Catalog, hist *history.Store, repo *state.Repo, clock *timer.Controller, loc *time.Location) *Server {
	return &Server{
		engine:  eng,
		catalog: cat,
		history: hist,
		state:   repo,
		timer:   clock,
		stats:   stats.NewCalculator(loc),
		Clock:   time.Now,
	}
}

// LogNotifier reports engine notifications through slog. The server has no
// terminal, so clients learn about the undo window from the complete
// response instead.
type LogNotifier struct{}

func (LogNotifier) Notify(message string, ttl time.Duration) {
	slog.Info("notification", "message", message, "undo_window", ttl)
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/routines", s.listRoutines)
	mux.HandleFunc("GET /api/v1/routines/{id}", s.getRoutine)
	mux.HandleFunc("GET /api/v1/routines/{id}/week", s.weekStatus)
	mux.HandleFunc("GET /api/v1/routines/{id}/days/{day}", s.dayStatus)
	mux.HandleFunc("POST /api/v1/routines/{id}/days/{day}/exercises/{exercise}/toggle", s.toggleExercise)
	mux.HandleFunc("POST /api/v1/routines/{id}/days/{day}/complete", s.completeDay)
	mux.HandleFunc("DELETE /api/v1/routines/{id}/days/{day}/sessions", s.uncompleteDay)

	mux.HandleFunc("GET /api/v1/undo", s.pendingUndo)
	mux.HandleFunc("POST /api/v1/undo", s.undo)

	mux.HandleFunc("GET /api/v1/selection", s.getSelection)
	mux.HandleFunc("PUT /api/v1/selection", s.putSelection)

	mux.HandleFunc("GET /api/v1/history", s.listHistory)
	mux.HandleFunc("DELETE /api/v1/history/{id}", s.deleteSession)

	mux.HandleFunc("GET /api/v1/stats", s.getStats)

	mux.HandleFunc("GET /api/v1/timer", s.getTimer)
	mux.HandleFunc("POST /api/v1/timer/{action}", s.timerAction)
	mux.HandleFunc("POST /api/v1/timer/rest", s.startRest)
	mux.HandleFunc("DELETE /api/v1/timer/rest", s.stopRest)

	return logMiddleware(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine and catalog errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrRoutineNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrDayLogged):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeOptional decodes a JSON body into v; an empty body leaves v alone.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// --- Routines ---

func (s *Server) listRoutines(w http.ResponseWriter, r *http.Request) {
	routines := s.catalog.Routines()
	if r.URL.Query().Get("recommended") == "true" {
		var profile *models.UserProfile
		p, ok, err := s.state.Profile(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if ok {
			profile = &p
		}
		routines = catalog.Recommend(profile, routines)
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) getRoutine(w http.ResponseWriter, r *http.Request) {
	routine, err := s.catalog.Routine(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) weekStatus(w http.ResponseWriter, r *http.Request) {
	days, err := s.engine.WeekStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) dayStatus(w http.ResponseWriter, r *http.Request) {
	ds, err := s.engine.DayStatus(r.Context(), r.PathValue("id"), r.PathValue("day"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) toggleExercise(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.ToggleExercise(r.Context(), r.PathValue("id"), r.PathValue("day"), r.PathValue("exercise"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type completeRequest struct {
	Title string `json:"title"`
}

type completeResponse struct {
	Session       *models.WorkoutSession `json:"session"`
	UndoExpiresAt *time.Time             `json:"undoExpiresAt,omitempty"`
}

func (s *Server) completeDay(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	session, err := s.engine.PromoteDay(r.Context(), r.PathValue("id"), r.PathValue("day"), req.Title)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, completeResponse{})
		return
	}

	resp := completeResponse{Session: session}
	if tok := s.engine.PendingUndo(); tok != nil {
		resp.UndoExpiresAt = &tok.ExpiresAt
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) uncompleteDay(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.UnpromoteDay(r.Context(), r.PathValue("id"), r.PathValue("day"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// --- Undo ---

func (s *Server) pendingUndo(w http.ResponseWriter, r *http.Request) {
	tok := s.engine.PendingUndo()
	if tok == nil {
		writeError(w, http.StatusNotFound, "nothing to undo")
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	undone, err := s.engine.ConsumeUndoToken(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"undone": undone})
}

// --- Selection ---

type selection struct {
	RoutineID string `json:"routineId"`
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	st, err := s.state.Load(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selection{RoutineID: st.SelectedRoutineID})
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var sel selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := s.catalog.Routine(sel.RoutineID); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.state.SelectRoutine(r.Context(), sel.RoutineID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// --- History ---

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.history.List(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	routineID := r.URL.Query().Get("routine")
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
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
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok, err := s.history.Get(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	} else if !ok {
		writeError(w, http.StatusNotFound, "session not found: "+id)
		return
	}
	if err := s.history.RemoveByID(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Stats ---

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.history.List(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	var profile *models.UserProfile
	if p, ok, err := s.state.Profile(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	} else if ok {
		profile = &p
	}
	writeJSON(w, http.StatusOK, s.stats.Summarize(sessions, profile, s.Clock()))
}

// --- Timer ---

func (s *Server) getTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.timer.Tick(s.Clock()))
}

func (s *Server) timerAction(w http.ResponseWriter, r *http.Request) {
	now := s.Clock()
	var err error
	switch action := r.PathValue("action"); action {
	case "start":
		err = s.timer.Start(r.Context(), now)
	case "stop":
		err = s.timer.Stop(r.Context(), now)
	case "reset":
		err = s.timer.Reset(r.Context())
	case "expand":
		err = s.timer.ToggleExpanded(r.Context())
	default:
		writeError(w, http.StatusNotFound, "unknown timer action: "+action)
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.timer.Tick(now))
}

type restRequest struct {
	Minutes string `json:"minutes"`
}

func (s *Server) startRest(w http.ResponseWriter, r *http.Request) {
	var req restRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	now := s.Clock()
	if _, started := s.timer.StartRest(req.Minutes, now); !started {
		writeError(w, http.StatusConflict, "a rest countdown is already running")
		return
	}
	writeJSON(w, http.StatusOK, s.timer.Tick(now))
}

func (s *Server) stopRest(w http.ResponseWriter, r *http.Request) {
	s.timer.StopRest()
	writeJSON(w, http.StatusOK, s.timer.Tick(s.Clock()))
}
