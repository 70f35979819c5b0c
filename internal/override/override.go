// Package override stores per-routine adjustments to scheduled sets, reps and notes.
package override

import (
	"context"
	"strings"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/store"
)

// Store persists overrides under "RoutineOverrides:{routineId}", keyed by
// "{day}:{exerciseId}".
type Store struct {
	kv   store.Store
	keys store.Keys
}

// NewStore creates an override Store over kv.
func NewStore(kv store.Store, keys store.Keys) *Store {
	return &Store{kv: kv, keys: keys}
}

// Key builds the map key used for an exercise on a routine day.
func Key(day, exerciseID string) string {
	return day + ":" + exerciseID
}

func (s *Store) All(ctx context.Context, routineID string) (map[string]models.ExerciseOverride, error) {
	m, err := store.GetJSON(ctx, s.kv, s.keys.Overrides(routineID), map[string]models.ExerciseOverride{})
	if m == nil {
		m = map[string]models.ExerciseOverride{}
	}
	return m, err
}

// Get returns the override for an exercise on day, matching the day label
// the same way the calendar does ("Sábado" finds "sabado").
func (s *Store) Get(ctx context.Context, routineID, day, exerciseID string) (models.ExerciseOverride, bool, error) {
	all, err := s.All(ctx, routineID)
	if err != nil {
		return models.ExerciseOverride{}, false, err
	}
	if o, ok := all[Key(day, exerciseID)]; ok {
		return o, true, nil
	}
	for k, o := range all {
		d, id, ok := strings.Cut(k, ":")
		if ok && id == exerciseID && calendar.SameWeekday(d, day) {
			return o, true, nil
		}
	}
	return models.ExerciseOverride{}, false, nil
}

// Set stores o for the exercise, normalised against its scheduled defaults.
// Non-positive sets and blank reps fall back to the defaults; an override
// equal to the defaults is removed instead of stored.
func (s *Store) Set(ctx context.Context, routineID, day string, def models.RoutineExercise, o models.ExerciseOverride) error {
	if o.Sets <= 0 {
		o.Sets = def.Sets
	}
	o.Reps = strings.TrimSpace(o.Reps)
	if o.Reps == "" {
		o.Reps = def.Reps
	}
	o.Note = strings.TrimSpace(o.Note)

	if o.Sets == def.Sets && o.Reps == def.Reps && o.Note == def.Notes {
		return s.Reset(ctx, routineID, day, def.ExerciseID)
	}

	all, err := s.All(ctx, routineID)
	if err != nil {
		return err
	}
	all[Key(day, def.ExerciseID)] = o
	return store.SetJSON(ctx, s.kv, s.keys.Overrides(routineID), all)
}

// Reset removes the override for the exercise on day.
func (s *Store) Reset(ctx context.Context, routineID, day, exerciseID string) error {
	all, err := s.All(ctx, routineID)
	if err != nil {
		return err
	}
	if _, ok := all[Key(day, exerciseID)]; !ok {
		return nil
	}
	delete(all, Key(day, exerciseID))
	return store.SetJSON(ctx, s.kv, s.keys.Overrides(routineID), all)
}

// Apply returns the effective sets, reps and notes of ex on day.
func (s *Store) Apply(ctx context.Context, routineID, day string, ex models.RoutineExercise) (models.RoutineExercise, error) {
	o, ok, err := s.Get(ctx, routineID, day, ex.ExerciseID)
	if err != nil || !ok {
		return ex, err
	}
	ex.Sets = o.Sets
	ex.Reps = o.Reps
	if o.Note != "" {
		ex.Notes = o.Note
	}
	return ex, nil
}
