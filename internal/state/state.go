// Package state persists the workout document and the user profile.
package state

import (
	"context"
	"sync"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/store"
)

// Repo reads and writes the "{app}:workouts" and "{app}:user" documents.
// Update serializes read-modify-write cycles within one process.
type Repo struct {
	store store.Store
	keys  store.Keys
	mu    sync.Mutex
}

// NewRepo creates a Repo over s.
func NewRepo(s store.Store, keys store.Keys) *Repo {
	return &Repo{store: s, keys: keys}
}

func defaultWorkoutState() models.WorkoutState {
	return models.WorkoutState{
		CustomWorkouts: []models.CustomWorkout{},
		History:        []models.WorkoutSession{},
	}
}

// Load returns the current workout document, or the default document when
// nothing (or nothing readable) is stored.
func (r *Repo) Load(ctx context.Context) (models.WorkoutState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *Repo) load(ctx context.Context) (models.WorkoutState, error) {
	st, err := store.GetJSON(ctx, r.store, r.keys.Workouts(), defaultWorkoutState())
	if err != nil {
		return st, err
	}
	if st.History == nil {
		st.History = []models.WorkoutSession{}
	}
	if st.CustomWorkouts == nil {
		st.CustomWorkouts = []models.CustomWorkout{}
	}
	return st, nil
}

// Update loads the workout document, applies fn and persists the result.
// Nothing is written when fn returns an error.
func (r *Repo) Update(ctx context.Context, fn func(*models.WorkoutState) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&st); err != nil {
		return err
	}
	return store.SetJSON(ctx, r.store, r.keys.Workouts(), st)
}

// Profile returns the stored user profile; ok is false when onboarding never ran.
func (r *Repo) Profile(ctx context.Context) (profile models.UserProfile, ok bool, err error) {
	p, err := store.GetJSON[*models.UserProfile](ctx, r.store, r.keys.User(), nil)
	if err != nil || p == nil {
		return models.UserProfile{}, false, err
	}
	return *p, true, nil
}

// SaveProfile replaces the stored user profile.
func (r *Repo) SaveProfile(ctx context.Context, p models.UserProfile) error {
	return store.SetJSON(ctx, r.store, r.keys.User(), p)
}
