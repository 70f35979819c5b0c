package state

import (
	"context"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/store"
)

// MaxCustomWorkouts caps the number of stored custom workouts.
const MaxCustomWorkouts = 30

// SelectRoutine marks routineID as the active routine.
func (r *Repo) SelectRoutine(ctx context.Context, routineID string) error {
	return r.Update(ctx, func(st *models.WorkoutState) error {
		st.SelectedRoutineID = routineID
		return nil
	})
}

// AddCustomWorkout stores w newest-first with a fresh id and returns the id.
// The oldest workouts beyond MaxCustomWorkouts are dropped.
func (r *Repo) AddCustomWorkout(ctx context.Context, w models.CustomWorkout) (string, error) {
	w.ID = store.NewID()
	err := r.Update(ctx, func(st *models.WorkoutState) error {
		list := append([]models.CustomWorkout{w}, st.CustomWorkouts...)
		if len(list) > MaxCustomWorkouts {
			list = list[:MaxCustomWorkouts]
		}
		st.CustomWorkouts = list
		return nil
	})
	if err != nil {
		return "", err
	}
	return w.ID, nil
}

// DeleteCustomWorkout removes the custom workout with id; missing ids are ignored.
func (r *Repo) DeleteCustomWorkout(ctx context.Context, id string) error {
	return r.Update(ctx, func(st *models.WorkoutState) error {
		kept := st.CustomWorkouts[:0]
		for _, w := range st.CustomWorkouts {
			if w.ID != id {
				kept = append(kept, w)
			}
		}
		st.CustomWorkouts = kept
		return nil
	})
}
