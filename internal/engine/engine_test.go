package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/rutina/internal/catalog"
	"github.com/joescharf/rutina/internal/history"
	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/override"
	"github.com/joescharf/rutina/internal/progress"
	"github.com/joescharf/rutina/internal/state"
	"github.com/joescharf/rutina/internal/store"
)

const monday = "2024-06-03"

// fakeClock starts on Wednesday 2024-06-05 10:00 UTC.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(message string, _ time.Duration) {
	n.messages = append(n.messages, message)
}

type testEnv struct {
	engine    *Engine
	clock     *fakeClock
	progress  *progress.Store
	history   *history.Store
	overrides *override.Store
	repo      *state.Repo
	notifier  *recordingNotifier
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]models.RoutinePlan{{
			ID:   "r1",
			Name: "Test Routine",
			Workouts: []models.RoutineWorkout{
				{Day: "Lunes", Title: "Leg Day", Exercises: []models.RoutineExercise{
					{ExerciseID: "e1", Sets: 4, Reps: "8"},
					{ExerciseID: "e2", Sets: 3, Reps: "12"},
				}},
				{Day: "Miércoles", Title: "Mobility"},
				{Day: "Viernes", Title: "Push", Exercises: []models.RoutineExercise{
					{ExerciseID: "e3", Sets: 3, Reps: "10"},
				}},
			},
		}},
		[]models.Exercise{
			{ID: "e1", Name: "Back Squat"},
			{ID: "e2", Name: "Walking Lunge"},
			{ID: "e3", Name: "Bench Press"},
		},
	)
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	kv, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, kv.Migrate(context.Background()))
	t.Cleanup(func() { kv.Close() })

	env := &testEnv{
		clock:     newFakeClock(),
		progress:  progress.NewStore(kv, store.DefaultKeys),
		overrides: override.NewStore(kv, store.DefaultKeys),
		repo:      state.NewRepo(kv, store.DefaultKeys),
		notifier:  &recordingNotifier{},
	}
	env.history = history.NewStore(env.repo, time.UTC, 0)

	cfg.Clock = env.clock.Now
	cfg.Location = time.UTC
	env.engine = New(Deps{
		Catalog:   testCatalog(),
		Progress:  env.progress,
		History:   env.history,
		State:     env.repo,
		Overrides: env.overrides,
		Notifier:  env.notifier,
	}, cfg)
	return env
}

func TestScenario_ToggleThenPromoteThenUndo(t *testing.T) {
	env := newTestEnv(t, Config{})
	e := env.engine
	ctx := context.Background()

	res, err := e.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.True(t, res.Changed)
	assert.Equal(t, models.DayStatePartial, res.State)

	done, err := env.progress.IsDone(ctx, "r1", monday, "e1")
	require.NoError(t, err)
	assert.True(t, done)
	all, err := env.progress.AllDone(ctx, "r1", monday, []string{"e1", "e2"})
	require.NoError(t, err)
	assert.False(t, all)

	res, err = e.ToggleExercise(ctx, "r1", "Lunes", "e2")
	require.NoError(t, err)
	assert.Equal(t, models.DayStateAllDone, res.State)

	session, err := e.PromoteDay(ctx, "r1", "Lunes", "Leg Day")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "r1", session.RoutineID)
	assert.Equal(t, 16, session.DurationMinutes)
	assert.Equal(t, float64(DefaultPerceivedEffort), session.PerceivedEffort)
	assert.Zero(t, session.TotalVolume)
	assert.Contains(t, session.Notes, "Leg Day")
	assert.Equal(t, "2024-06-03T10:00:00Z", session.Date)
	require.Len(t, session.PerformedExercises, 2)
	assert.Equal(t, models.PerformedExercise{ExerciseID: "e1", Name: "Back Squat", Sets: 4, Reps: "8"}, session.PerformedExercises[0])
	assert.Equal(t, "e2", session.PerformedExercises[1].ExerciseID)

	sessions, err := env.history.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	ids, err := env.progress.Done(ctx, "r1", monday)
	require.NoError(t, err)
	assert.Empty(t, ids, "promotion clears the checklist")

	ds, err := e.DayStatus(ctx, "r1", "Lunes")
	require.NoError(t, err)
	assert.Equal(t, models.DayStateLogged, ds.State)

	tok := e.PendingUndo()
	require.NotNil(t, tok)
	assert.Equal(t, session.ID, tok.SessionID)
	assert.Equal(t, monday, tok.ISODate)

	env.clock.Advance(time.Second)
	undone, err := e.ConsumeUndoToken(ctx)
	require.NoError(t, err)
	assert.True(t, undone)

	sessions, err = env.history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	ids, err = env.progress.Done(ctx, "r1", monday)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e2"}, ids)

	assert.Nil(t, e.PendingUndo())
	undone, err = e.ConsumeUndoToken(ctx)
	require.NoError(t, err)
	assert.False(t, undone, "tokens are single use")

	require.Len(t, env.notifier.messages, 1)
	assert.Contains(t, env.notifier.messages[0], "Leg Day")
}

func TestConsumeUndoToken_Expired(t *testing.T) {
	env := newTestEnv(t, Config{})
	e := env.engine
	ctx := context.Background()

	_, err := e.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)
	session, err := e.PromoteDay(ctx, "r1", "Lunes", "")
	require.NoError(t, err)
	require.NotNil(t, session)

	env.clock.Advance(DefaultUndoWindow)

	undone, err := e.ConsumeUndoToken(ctx)
	require.NoError(t, err)
	assert.False(t, undone)

	sessions, err := env.history.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "expired token leaves history alone")
	ids, err := env.progress.Done(ctx, "r1", monday)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestConsumeUndoToken_NoneArmed(t *testing.T) {
	env := newTestEnv(t, Config{})
	undone, err := env.engine.ConsumeUndoToken(context.Background())
	require.NoError(t, err)
	assert.False(t, undone)
}

func TestPromoteDay_TitleDefaultsToBlock(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "viernes", "e3")
	require.NoError(t, err)
	session, err := env.engine.PromoteDay(ctx, "r1", "viernes", "")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Contains(t, session.Notes, "Push")
	assert.Equal(t, 8, session.DurationMinutes)
	assert.Equal(t, "2024-06-07T10:00:00Z", session.Date)
}

func TestPromoteDay_NothingDoneIsNoop(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	session, err := env.engine.PromoteDay(ctx, "r1", "Lunes", "Leg Day")
	require.NoError(t, err)
	assert.Nil(t, session)

	sessions, err := env.history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Nil(t, env.engine.PendingUndo())
	assert.Empty(t, env.notifier.messages)
}

func TestPromoteDay_DuplicateGuard(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)
	_, err = env.engine.PromoteDay(ctx, "r1", "Lunes", "")
	require.NoError(t, err)

	_, err = env.engine.PromoteDay(ctx, "r1", "Lunes", "")
	assert.ErrorIs(t, err, ErrDayLogged)
}

func TestPromoteDay_DuplicatesAllowed(t *testing.T) {
	env := newTestEnv(t, Config{AllowDuplicatePromotion: true})
	ctx := context.Background()

	for range 2 {
		// A logged day ignores toggles, so tick through the store directly.
		require.NoError(t, env.progress.Restore(ctx, "r1", monday, []string{"e1"}))
		session, err := env.engine.PromoteDay(ctx, "r1", "Lunes", "")
		require.NoError(t, err)
		require.NotNil(t, session)
	}

	sessions, err := env.history.FindByRoutineAndDay(ctx, "r1", monday)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestPromoteDay_AppliesOverridesAndKeepsExtras(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	def := models.RoutineExercise{ExerciseID: "e2", Sets: 3, Reps: "12"}
	require.NoError(t, env.overrides.Set(ctx, "r1", "Lunes", def, models.ExerciseOverride{Sets: 5, Reps: "10"}))

	require.NoError(t, env.progress.Restore(ctx, "r1", monday, []string{"legacy", "e2"}))

	session, err := env.engine.PromoteDay(ctx, "r1", "Lunes", "")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, session.PerformedExercises, 2)
	assert.Equal(t, models.PerformedExercise{ExerciseID: "e2", Name: "Walking Lunge", Sets: 5, Reps: "10"}, session.PerformedExercises[0])
	assert.Equal(t, "legacy", session.PerformedExercises[1].ExerciseID)
}

func TestPromoteDay_EmptyBlockUsesDefaultDuration(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	// Stale progress on a day that no longer schedules anything.
	require.NoError(t, env.progress.Restore(ctx, "r1", "2024-06-05", []string{"e1"}))

	session, err := env.engine.PromoteDay(ctx, "r1", "Miércoles", "")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, DefaultDurationMinutes, session.DurationMinutes)
}

func TestToggleExercise_LoggedDayIgnored(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)
	_, err = env.engine.PromoteDay(ctx, "r1", "Lunes", "")
	require.NoError(t, err)

	res, err := env.engine.ToggleExercise(ctx, "r1", "Lunes", "e2")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, res.Done)
	assert.Equal(t, models.DayStateLogged, res.State)

	ids, err := env.progress.Done(ctx, "r1", monday)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleExercise_IgnoredWithoutScheduledExercise(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	res, err := env.engine.ToggleExercise(ctx, "r1", "Miércoles", "e1")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, models.DayStateUntouched, res.State)

	res, err = env.engine.ToggleExercise(ctx, "r1", "Lunes", "e3")
	require.NoError(t, err)
	assert.False(t, res.Changed)

	ids, err := env.progress.Done(ctx, "r1", monday)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleExercise_UnknownRoutine(t *testing.T) {
	env := newTestEnv(t, Config{})
	_, err := env.engine.ToggleExercise(context.Background(), "nope", "Lunes", "e1")
	assert.ErrorIs(t, err, catalog.ErrRoutineNotFound)
}

func TestUnpromoteDay(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)
	_, err = env.engine.PromoteDay(ctx, "r1", "Lunes", "")
	require.NoError(t, err)

	n, err := env.engine.UnpromoteDay(ctx, "r1", "Lunes")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, env.engine.PendingUndo(), "token for a removed session is dropped")

	ds, err := env.engine.DayStatus(ctx, "r1", "Lunes")
	require.NoError(t, err)
	assert.Equal(t, models.DayStateUntouched, ds.State, "checklist is not restored")

	n, err = env.engine.UnpromoteDay(ctx, "r1", "Lunes")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDayStatus(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "lunes", "e2")
	require.NoError(t, err)

	ds, err := env.engine.DayStatus(ctx, "r1", "MONDAY")
	require.NoError(t, err)
	assert.Equal(t, "Lunes", ds.Weekday)
	assert.Equal(t, monday, ds.Date)
	assert.Equal(t, "Leg Day", ds.Title)
	assert.True(t, ds.Scheduled)
	assert.Equal(t, models.DayStatePartial, ds.State)
	require.Len(t, ds.Exercises, 2)
	assert.False(t, ds.Exercises[0].Done)
	assert.True(t, ds.Exercises[1].Done)
	assert.Equal(t, "Walking Lunge", ds.Exercises[1].Name)

	ds, err = env.engine.DayStatus(ctx, "r1", "Domingo")
	require.NoError(t, err)
	assert.False(t, ds.Scheduled)
	assert.Empty(t, ds.Exercises)
}

func TestWeekStatus(t *testing.T) {
	env := newTestEnv(t, Config{})

	days, err := env.engine.WeekStatus(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-06-03", days[0].Date)
	assert.Equal(t, "2024-06-05", days[1].Date)
	assert.Equal(t, "2024-06-07", days[2].Date)
}

func TestWeeklyReset(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)

	ran, err := env.engine.WeeklyReset(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "only runs on Sunday")

	env.clock.Set(time.Date(2024, 6, 9, 8, 0, 0, 0, time.UTC))
	ran, err = env.engine.WeeklyReset(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	ids, err := env.progress.Done(ctx, "r1", monday)
	require.NoError(t, err)
	assert.Empty(t, ids)

	st, err := env.repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-W23", st.LastWeeklyReset)

	// Same Sunday: progress made after the sweep survives.
	require.NoError(t, env.progress.Restore(ctx, "r1", "2024-06-09", []string{"e1"}))
	env.clock.Advance(time.Hour)
	ran, err = env.engine.WeeklyReset(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	ids, err = env.progress.Done(ctx, "r1", "2024-06-09")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids)

	// The next Sunday sweeps again.
	env.clock.Set(time.Date(2024, 6, 16, 8, 0, 0, 0, time.UTC))
	ran, err = env.engine.WeeklyReset(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestResetWeek(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()

	_, err := env.engine.ToggleExercise(ctx, "r1", "Lunes", "e1")
	require.NoError(t, err)

	n, err := env.engine.ResetWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.engine.ResetWeek(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
