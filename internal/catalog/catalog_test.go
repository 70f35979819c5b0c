package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/rutina/internal/models"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Len(t, c.Routines(), 3)
	assert.NotEmpty(t, c.Exercises())

	r, err := c.Routine("lean-start")
	require.NoError(t, err)
	assert.Equal(t, "Lean Start", r.Name)
	assert.Equal(t, models.RoutineGoalFatLoss, r.Goal)
	require.Len(t, r.Workouts, 3)
	assert.Equal(t, "jumping-jacks", r.Workouts[0].Exercises[0].ExerciseID)
	assert.Equal(t, "45s", r.Workouts[0].Exercises[0].Reps)
}

func TestDefault_EveryScheduledExerciseIsInLibrary(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, r := range c.Routines() {
		for _, w := range r.Workouts {
			for _, e := range w.Exercises {
				_, ok := c.Exercise(e.ExerciseID)
				assert.True(t, ok, "%s/%s: %s missing from library", r.ID, w.Day, e.ExerciseID)
			}
		}
	}
}

func TestRoutine_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Routine("nope")
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestBlock(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	b, ok, err := c.Block("power-hypertrophy", "sabado")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pull Detalles", b.Title)
	assert.Len(t, b.ExerciseIDs(), 4)

	b, ok, err = c.Block("power-hypertrophy", "Saturday")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pull Detalles", b.Title)

	_, ok, err = c.Block("power-hypertrophy", "Domingo")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Block("missing", "Lunes")
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestExerciseName(t *testing.T) {
	c := New(nil, []models.Exercise{{ID: "e1", Name: "Squat"}, {ID: "e2"}})
	assert.Equal(t, "Squat", c.ExerciseName("e1"))
	assert.Equal(t, "e2", c.ExerciseName("e2"), "blank name falls back to id")
	assert.Equal(t, "zzz", c.ExerciseName("zzz"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("- id: [unterminated"), nil)
	assert.Error(t, err)
}

func ids(rs []models.RoutinePlan) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestRecommend_NoProfile(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	got := Recommend(nil, c.Routines())
	assert.Equal(t, []string{"lean-start", "power-hypertrophy", "elite-strength"}, ids(got))
}

func TestRecommend_GoalAndLevel(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	got := Recommend(&models.UserProfile{Goal: models.UserGoalMuscle, Level: models.LevelBeginner}, c.Routines())
	assert.Equal(t, []string{"power-hypertrophy"}, ids(got))

	got = Recommend(&models.UserProfile{Goal: models.UserGoalPerformance, Level: models.LevelBeginner}, c.Routines())
	assert.Empty(t, got, "advanced strength is two levels above a beginner")

	got = Recommend(&models.UserProfile{Goal: models.UserGoalPerformance, Level: models.LevelIntermediate}, c.Routines())
	assert.Equal(t, []string{"elite-strength"}, ids(got))
}

func TestRecommend_ScoresFocusAndFrequency(t *testing.T) {
	routines := []models.RoutinePlan{
		{ID: "a", Goal: models.RoutineGoalFatLoss, Level: models.LevelBeginner, FocusAreas: []string{"legs"}, SessionsPerWeek: 6},
		{ID: "b", Goal: models.RoutineGoalFatLoss, Level: models.LevelBeginner, FocusAreas: []string{"core"}, SessionsPerWeek: 3},
		{ID: "c", Goal: models.RoutineGoalFatLoss, Level: models.LevelBeginner, FocusAreas: []string{"cardio"}, SessionsPerWeek: 3},
		{ID: "d", Goal: models.RoutineGoalFatLoss, Level: models.LevelBeginner, SessionsPerWeek: 1},
	}
	profile := &models.UserProfile{
		Goal:            models.UserGoalHealth,
		FocusAreas:      []string{"cardio"},
		WeeklyFrequency: 3,
	}

	got := Recommend(profile, routines)
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))
}
