// Package history stores logged workout sessions, most recent first.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/state"
	"github.com/joescharf/rutina/internal/store"
)

// DefaultMaxSessions is the number of sessions kept when no cap is configured.
const DefaultMaxSessions = 60

// Store is the session history kept in the workout document.
type Store struct {
	repo        *state.Repo
	loc         *time.Location
	maxSessions int
}

// NewStore creates a history Store. Session days are compared in loc.
// A non-positive maxSessions selects DefaultMaxSessions.
func NewStore(repo *state.Repo, loc *time.Location, maxSessions int) *Store {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{repo: repo, loc: loc, maxSessions: maxSessions}
}

// Append stores session with a fresh id at the head of the history and
// returns the id. Sessions beyond the cap are evicted, oldest first.
func (s *Store) Append(ctx context.Context, session models.WorkoutSession) (string, error) {
	session.ID = store.NewID()
	err := s.repo.Update(ctx, func(st *models.WorkoutState) error {
		list := append([]models.WorkoutSession{session}, st.History...)
		if len(list) > s.maxSessions {
			slog.Debug("evicting old sessions", "count", len(list)-s.maxSessions)
			list = list[:s.maxSessions]
		}
		st.History = list
		return nil
	})
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// RemoveByID deletes the session with id. Unknown ids are ignored.
func (s *Store) RemoveByID(ctx context.Context, id string) error {
	return s.repo.Update(ctx, func(st *models.WorkoutState) error {
		kept := st.History[:0]
		for _, h := range st.History {
			if h.ID != id {
				kept = append(kept, h)
			}
		}
		st.History = kept
		return nil
	})
}

// List returns all sessions, most recent first.
func (s *Store) List(ctx context.Context) ([]models.WorkoutSession, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.History, nil
}

// Get returns the session with id, or false if it is not in the history.
func (s *Store) Get(ctx context.Context, id string) (models.WorkoutSession, bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return models.WorkoutSession{}, false, err
	}
	for _, h := range list {
		if h.ID == id {
			return h, true, nil
		}
	}
	return models.WorkoutSession{}, false, nil
}

// FindByRoutineAndDay returns the sessions of routineID whose date falls on
// the local ISO day.
func (s *Store) FindByRoutineAndDay(ctx context.Context, routineID, day string) ([]models.WorkoutSession, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.WorkoutSession
	for _, h := range list {
		if h.RoutineID != routineID {
			continue
		}
		d, err := calendar.DayOfTimestamp(h.Date, s.loc)
		if err != nil {
			slog.Warn("skipping session with unreadable date", "id", h.ID, "date", h.Date)
			continue
		}
		if d == day {
			out = append(out, h)
		}
	}
	return out, nil
}

// IsDayLogged reports whether routineID has at least one session on day.
func (s *Store) IsDayLogged(ctx context.Context, routineID, day string) (bool, error) {
	found, err := s.FindByRoutineAndDay(ctx, routineID, day)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}
