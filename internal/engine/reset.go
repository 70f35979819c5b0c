package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/models"
)

// WeeklyReset clears every routine's checklist once per week, on Sunday.
// The week that was last reset is recorded so repeated calls on the same
// Sunday do nothing. It reports whether a sweep ran.
func (e *Engine) WeeklyReset(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if now.Weekday() != time.Sunday {
		return false, nil
	}
	week := calendar.WeekIdentifier(now)

	st, err := e.deps.State.Load(ctx)
	if err != nil {
		return false, err
	}
	if st.LastWeeklyReset == week {
		return false, nil
	}

	n, err := e.deps.Progress.SweepAll(ctx)
	if err != nil {
		// Leave the watermark alone so the next call retries the failures.
		return false, err
	}
	if err := e.deps.State.Update(ctx, func(st *models.WorkoutState) error {
		st.LastWeeklyReset = week
		return nil
	}); err != nil {
		return false, err
	}

	slog.Info("weekly reset", "week", week, "routines", n)
	return true, nil
}

// ResetWeek clears every routine's checklist immediately, regardless of the
// day, and returns how many progress records were removed.
func (e *Engine) ResetWeek(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.deps.Progress.SweepAll(ctx)
}
