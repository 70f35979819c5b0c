// Package engine reconciles per-exercise checklist progress with the logged
// session history.
//
// A routine day moves through untouched -> partial -> all_done as exercises
// are ticked, and becomes logged once it is promoted into a WorkoutSession.
// The most recent promotion can be reverted through a short-lived undo token.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/catalog"
	"github.com/joescharf/rutina/internal/history"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/override"
	"github.com/joescharf/rutina/internal/progress"
	"github.com/joescharf/rutina/internal/state"
)

// ErrDayLogged is returned by PromoteDay when the day already has a session
// and duplicate promotion is not allowed.
var ErrDayLogged = errors.New("day already logged")

// Defaults applied by Config for zero-valued fields.
const (
	DefaultUndoWindow         = 2800 * time.Millisecond
	DefaultMinutesPerExercise = 8
	DefaultDurationMinutes    = 30
	DefaultPerceivedEffort    = 7
)

// Notifier shows a transient message to the user for ttl.
type Notifier interface {
	Notify(message string, ttl time.Duration)
}

// Config tunes the engine. Zero values select the defaults above, the local
// time zone and the wall clock.
type Config struct {
	UndoWindow              time.Duration
	MinutesPerExercise      int
	DefaultDurationMinutes  int
	PerceivedEffort         float64
	AllowDuplicatePromotion bool
	Location                *time.Location
	Clock                   func() time.Time
}

func (c Config) withDefaults() Config {
	if c.UndoWindow <= 0 {
		c.UndoWindow = DefaultUndoWindow
	}
	if c.MinutesPerExercise <= 0 {
		c.MinutesPerExercise = DefaultMinutesPerExercise
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = DefaultDurationMinutes
	}
	if c.PerceivedEffort <= 0 {
		c.PerceivedEffort = DefaultPerceivedEffort
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Deps are the collaborators the engine orchestrates. Overrides and Notifier
// are optional.
type Deps struct {
	Catalog   *catalog.Catalog
	Progress  *progress.Store
	History   *history.Store
	State     *state.Repo
	Overrides *override.Store
	Notifier  Notifier
}

// Engine is safe for concurrent use; every operation runs under one lock so
// the progress and history stores are observed consistently between calls.
type Engine struct {
	deps Deps
	cfg  Config

	mu   sync.Mutex
	undo *models.UndoToken
}

// New creates an Engine.
func New(deps Deps, cfg Config) *Engine {
	return &Engine{deps: deps, cfg: cfg.withDefaults()}
}

func (e *Engine) now() time.Time {
	return e.cfg.Clock().In(e.cfg.Location)
}

// ExerciseStatus is one checklist line of a day.
type ExerciseStatus struct {
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	Reps       string `json:"reps"`
	Notes      string `json:"notes,omitempty"`
	Done       bool   `json:"done"`
}

// DayStatus is the checklist and reconciliation state of a routine day.
type DayStatus struct {
	RoutineID string                  `json:"routineId"`
	Weekday   string                  `json:"weekday"`
	Date      string                  `json:"date"`
	Title     string                  `json:"title"`
	Scheduled bool                    `json:"scheduled"`
	State     models.DayState         `json:"state"`
	Exercises []ExerciseStatus        `json:"exercises"`
	Sessions  []models.WorkoutSession `json:"sessions,omitempty"`
}

// ToggleResult reports the outcome of ToggleExercise. Changed is false when
// the toggle was ignored.
type ToggleResult struct {
	Done    bool            `json:"done"`
	Changed bool            `json:"changed"`
	State   models.DayState `json:"state"`
}

// day is a weekday label resolved against the current week.
type day struct {
	weekday   string
	date      time.Time
	iso       string
	block     models.RoutineWorkout
	scheduled bool
}

func (e *Engine) resolve(routineID, weekday string) (day, error) {
	block, ok, err := e.deps.Catalog.Block(routineID, weekday)
	if err != nil {
		return day{}, err
	}
	date := calendar.WeekdayToDate(weekday, e.now())
	return day{
		weekday:   weekday,
		date:      date,
		iso:       calendar.ToISODay(date),
		block:     block,
		scheduled: ok,
	}, nil
}

// state derives the reconciliation state of d and returns the ticked ids.
func (e *Engine) state(ctx context.Context, routineID string, d day) (models.DayState, []string, error) {
	done, err := e.deps.Progress.Done(ctx, routineID, d.iso)
	if err != nil {
		return "", nil, err
	}
	logged, err := e.deps.History.IsDayLogged(ctx, routineID, d.iso)
	if err != nil {
		return "", nil, err
	}

	ids := d.block.ExerciseIDs()
	switch {
	case logged:
		return models.DayStateLogged, done, nil
	case len(done) == 0:
		return models.DayStateUntouched, done, nil
	case len(ids) > 0 && containsAll(done, ids):
		return models.DayStateAllDone, done, nil
	default:
		return models.DayStatePartial, done, nil
	}
}

func containsAll(set, ids []string) bool {
	for _, id := range ids {
		if !slices.Contains(set, id) {
			return false
		}
	}
	return true
}

func (e *Engine) effective(ctx context.Context, routineID string, d day, ex models.RoutineExercise) models.RoutineExercise {
	if e.deps.Overrides == nil {
		return ex
	}
	eff, err := e.deps.Overrides.Apply(ctx, routineID, d.block.Day, ex)
	if err != nil {
		slog.Warn("ignoring exercise override", "routine", routineID, "exercise", ex.ExerciseID, "error", err)
		return ex
	}
	return eff
}

// DayStatus returns the checklist of routineID's block on weekday for the
// current week.
func (e *Engine) DayStatus(ctx context.Context, routineID, weekday string) (*DayStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.resolve(routineID, weekday)
	if err != nil {
		return nil, err
	}
	return e.dayStatus(ctx, routineID, d)
}

func (e *Engine) dayStatus(ctx context.Context, routineID string, d day) (*DayStatus, error) {
	st, done, err := e.state(ctx, routineID, d)
	if err != nil {
		return nil, err
	}
	sessions, err := e.deps.History.FindByRoutineAndDay(ctx, routineID, d.iso)
	if err != nil {
		return nil, err
	}

	out := &DayStatus{
		RoutineID: routineID,
		Weekday:   d.weekday,
		Date:      d.iso,
		Title:     d.block.Title,
		Scheduled: d.scheduled,
		State:     st,
		Exercises: make([]ExerciseStatus, 0, len(d.block.Exercises)),
		Sessions:  sessions,
	}
	if d.scheduled {
		out.Weekday = d.block.Day
	}
	for _, ex := range d.block.Exercises {
		eff := e.effective(ctx, routineID, d, ex)
		out.Exercises = append(out.Exercises, ExerciseStatus{
			ExerciseID: ex.ExerciseID,
			Name:       e.deps.Catalog.ExerciseName(ex.ExerciseID),
			Sets:       eff.Sets,
			Reps:       eff.Reps,
			Notes:      eff.Notes,
			Done:       slices.Contains(done, ex.ExerciseID),
		})
	}
	return out, nil
}

// WeekStatus returns DayStatus for every block of the routine, in schedule order.
func (e *Engine) WeekStatus(ctx context.Context, routineID string) ([]*DayStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.deps.Catalog.Routine(routineID)
	if err != nil {
		return nil, err
	}

	out := make([]*DayStatus, 0, len(r.Workouts))
	for _, w := range r.Workouts {
		d, err := e.resolve(routineID, w.Day)
		if err != nil {
			return nil, err
		}
		ds, err := e.dayStatus(ctx, routineID, d)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// ToggleExercise flips the completion of exerciseID on weekday. The toggle is
// ignored when the day is already logged, has no scheduled exercises, or
// does not schedule exerciseID.
func (e *Engine) ToggleExercise(ctx context.Context, routineID, weekday, exerciseID string) (*ToggleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.resolve(routineID, weekday)
	if err != nil {
		return nil, err
	}
	st, done, err := e.state(ctx, routineID, d)
	if err != nil {
		return nil, err
	}

	res := &ToggleResult{Done: slices.Contains(done, exerciseID), State: st}
	ids := d.block.ExerciseIDs()
	switch {
	case st == models.DayStateLogged:
		slog.Debug("toggle ignored on logged day", "routine", routineID, "date", d.iso)
		return res, nil
	case len(ids) == 0, !slices.Contains(ids, exerciseID):
		slog.Debug("toggle ignored for unscheduled exercise", "routine", routineID, "date", d.iso, "exercise", exerciseID)
		return res, nil
	}

	now, err := e.deps.Progress.Toggle(ctx, routineID, d.iso, exerciseID)
	if err != nil {
		return nil, err
	}
	st, _, err = e.state(ctx, routineID, d)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Done: now, Changed: true, State: st}, nil
}

// PromoteDay logs the exercises ticked on weekday as a WorkoutSession, clears
// the day's checklist and arms a fresh undo token. A day with nothing ticked
// is left alone and nil is returned. title defaults to the block title.
func (e *Engine) PromoteDay(ctx context.Context, routineID, weekday, title string) (*models.WorkoutSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.resolve(routineID, weekday)
	if err != nil {
		return nil, err
	}
	st, done, err := e.state(ctx, routineID, d)
	if err != nil {
		return nil, err
	}
	if st == models.DayStateLogged && !e.cfg.AllowDuplicatePromotion {
		return nil, fmt.Errorf("%w: %s on %s", ErrDayLogged, routineID, d.iso)
	}
	if len(done) == 0 {
		slog.Debug("nothing to promote", "routine", routineID, "date", d.iso)
		return nil, nil
	}

	performed := e.performed(ctx, routineID, d, done)

	duration := e.cfg.MinutesPerExercise * len(d.block.Exercises)
	if duration == 0 {
		duration = e.cfg.DefaultDurationMinutes
	}

	if title == "" {
		title = d.block.Title
	}
	if title == "" {
		title = weekday
	}

	now := e.now()
	y, m, dd := d.date.Date()
	at := time.Date(y, m, dd, now.Hour(), now.Minute(), now.Second(), 0, e.cfg.Location)

	session := models.WorkoutSession{
		RoutineID:          routineID,
		Date:               at.Format(time.RFC3339),
		PerceivedEffort:    e.cfg.PerceivedEffort,
		DurationMinutes:    duration,
		TotalVolume:        0,
		Notes:              "Completed from checklist: " + title,
		PerformedExercises: performed,
	}
	id, err := e.deps.History.Append(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id

	if err := e.deps.Progress.ClearDay(ctx, routineID, d.iso); err != nil {
		if rbErr := e.deps.History.RemoveByID(ctx, id); rbErr != nil {
			slog.Warn("failed to roll back session", "id", id, "error", rbErr)
		}
		return nil, err
	}

	e.undo = &models.UndoToken{
		SessionID:           id,
		RoutineID:           routineID,
		ISODate:             d.iso,
		RestoredExerciseIDs: done,
		ExpiresAt:           now.Add(e.cfg.UndoWindow),
	}

	if e.deps.Notifier != nil {
		e.deps.Notifier.Notify(fmt.Sprintf("%s logged (%d exercises, %d min)", title, len(performed), duration), e.cfg.UndoWindow)
	}
	slog.Debug("day promoted", "routine", routineID, "date", d.iso, "session", id)
	return &session, nil
}

// performed snapshots the ticked exercises: scheduled ones in block order
// with their effective sets and reps, then any ticked ids the block no longer lists.
func (e *Engine) performed(ctx context.Context, routineID string, d day, done []string) []models.PerformedExercise {
	var out []models.PerformedExercise
	for _, ex := range d.block.Exercises {
		if !slices.Contains(done, ex.ExerciseID) {
			continue
		}
		eff := e.effective(ctx, routineID, d, ex)
		out = append(out, models.PerformedExercise{
			ExerciseID: ex.ExerciseID,
			Name:       e.deps.Catalog.ExerciseName(ex.ExerciseID),
			Sets:       eff.Sets,
			Reps:       eff.Reps,
		})
	}

	ids := d.block.ExerciseIDs()
	for _, id := range done {
		if !slices.Contains(ids, id) {
			out = append(out, models.PerformedExercise{
				ExerciseID: id,
				Name:       e.deps.Catalog.ExerciseName(id),
			})
		}
	}
	return out
}

// UnpromoteDay deletes every session logged for routineID on weekday and
// returns how many were removed. The checklist is not restored.
func (e *Engine) UnpromoteDay(ctx context.Context, routineID, weekday string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.resolve(routineID, weekday)
	if err != nil {
		return 0, err
	}
	sessions, err := e.deps.History.FindByRoutineAndDay(ctx, routineID, d.iso)
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		if err := e.deps.History.RemoveByID(ctx, s.ID); err != nil {
			return 0, err
		}
		if e.undo != nil && e.undo.SessionID == s.ID {
			e.undo = nil
		}
	}
	return len(sessions), nil
}

// ConsumeUndoToken reverts the most recent promotion if its undo window is
// still open: the session is deleted and the checklist restored exactly.
// It reports whether anything was undone.
func (e *Engine) ConsumeUndoToken(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tok := e.undo
	if tok == nil {
		return false, nil
	}
	if tok.Expired(e.now()) {
		e.undo = nil
		return false, nil
	}

	if err := e.deps.History.RemoveByID(ctx, tok.SessionID); err != nil {
		return false, err
	}
	if err := e.deps.Progress.Restore(ctx, tok.RoutineID, tok.ISODate, tok.RestoredExerciseIDs); err != nil {
		return false, err
	}
	e.undo = nil
	slog.Debug("promotion undone", "routine", tok.RoutineID, "date", tok.ISODate, "session", tok.SessionID)
	return true, nil
}

// PendingUndo returns a copy of the live undo token, or nil. Expired tokens
// are discarded.
func (e *Engine) PendingUndo() *models.UndoToken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.undo == nil {
		return nil
	}
	if e.undo.Expired(e.now()) {
		e.undo = nil
		return nil
	}
	tok := *e.undo
	tok.RestoredExerciseIDs = slices.Clone(e.undo.RestoredExerciseIDs)
	return &tok
}
