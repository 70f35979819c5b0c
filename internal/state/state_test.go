package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/store"
)

func newTestRepo(t *testing.T) (*Repo, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return NewRepo(s, store.DefaultKeys), s
}

func TestLoad_Default(t *testing.T) {
	r, _ := newTestRepo(t)

	st, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, st.History)
	assert.NotNil(t, st.CustomWorkouts)
	assert.Empty(t, st.History)
	assert.False(t, st.Timer.Running)
}

func TestLoad_CorruptDocumentFallsBack(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "Rutina:workouts", []byte("garbage")))

	st, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.History)
}

func TestUpdate_Persists(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	err := r.Update(ctx, func(st *models.WorkoutState) error {
		st.LastWeeklyReset = "2024-W23"
		return nil
	})
	require.NoError(t, err)

	st, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-W23", st.LastWeeklyReset)
}

func TestUpdate_ErrorSkipsWrite(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := r.Update(ctx, func(st *models.WorkoutState) error {
		st.SelectedRoutineID = "should-not-stick"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.SelectedRoutineID)
}

func TestSelectRoutine(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SelectRoutine(ctx, "lean-start"))
	st, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lean-start", st.SelectedRoutineID)
}

func TestCustomWorkouts_AddDeleteAndCap(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	var firstID string
	for i := 0; i < MaxCustomWorkouts+5; i++ {
		id, err := r.AddCustomWorkout(ctx, models.CustomWorkout{Name: fmt.Sprintf("w%d", i)})
		require.NoError(t, err)
		if i == 0 {
			firstID = id
		}
	}

	st, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.CustomWorkouts, MaxCustomWorkouts)
	assert.Equal(t, fmt.Sprintf("w%d", MaxCustomWorkouts+4), st.CustomWorkouts[0].Name, "newest first")
	for _, w := range st.CustomWorkouts {
		assert.NotEqual(t, firstID, w.ID, "oldest should be evicted")
	}

	target := st.CustomWorkouts[3].ID
	require.NoError(t, r.DeleteCustomWorkout(ctx, target))
	require.NoError(t, r.DeleteCustomWorkout(ctx, "missing"))

	st, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, st.CustomWorkouts, MaxCustomWorkouts-1)
}

func TestProfile(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := r.Profile(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	p := models.UserProfile{Name: "Ana", HeightCm: 170, WeightKg: 65, Goal: models.UserGoalMuscle}
	require.NoError(t, r.SaveProfile(ctx, p))

	got, ok, err := r.Profile(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
