package timer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/state"
	"github.com/joescharf/rutina/internal/store"
)

// TestMain checks that no ticker goroutine outlives the tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *state.Repo {
	t.Helper()
	kv, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, kv.Migrate(context.Background()))
	t.Cleanup(func() { kv.Close() })
	return state.NewRepo(kv, store.DefaultKeys)
}

func TestStopwatch_StartTickStop(t *testing.T) {
	c := New(nil, models.TimerState{})
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, t0))
	snap := c.Tick(t0.Add(90 * time.Second))
	assert.True(t, snap.Running)
	assert.Equal(t, 90, snap.ElapsedSeconds)

	require.NoError(t, c.Stop(ctx, t0.Add(100*time.Second)))
	snap = c.Tick(t0.Add(500 * time.Second))
	assert.False(t, snap.Running)
	assert.Equal(t, 100, snap.ElapsedSeconds, "paused stopwatch does not advance")

	// Resume keeps counting from the paused value.
	require.NoError(t, c.Start(ctx, t0.Add(600*time.Second)))
	snap = c.Tick(t0.Add(605 * time.Second))
	assert.Equal(t, 105, snap.ElapsedSeconds)
}

func TestStopwatch_MissedTicksDoNotDrift(t *testing.T) {
	c := New(nil, models.TimerState{})
	require.NoError(t, c.Start(context.Background(), t0))

	c.Tick(t0.Add(1 * time.Second))
	snap := c.Tick(t0.Add(1 * time.Hour))
	assert.Equal(t, 3600, snap.ElapsedSeconds)
}

func TestStopwatch_Reset(t *testing.T) {
	c := New(nil, models.TimerState{})
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, t0))
	c.Tick(t0.Add(30 * time.Second))
	require.NoError(t, c.Reset(ctx))

	snap := c.Tick(t0.Add(60 * time.Second))
	assert.False(t, snap.Running)
	assert.Zero(t, snap.ElapsedSeconds)
}

func TestStopwatch_PersistsAcrossLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c, err := Load(ctx, repo, t0)
	require.NoError(t, err)
	require.NoError(t, c.ToggleExpanded(ctx))
	require.NoError(t, c.Start(ctx, t0))

	// A new process picks the running stopwatch back up.
	c2, err := Load(ctx, repo, t0.Add(2*time.Minute))
	require.NoError(t, err)
	snap := c2.Snapshot()
	assert.True(t, snap.Running)
	assert.True(t, snap.Expanded)
	assert.Equal(t, 120, snap.ElapsedSeconds)

	require.NoError(t, c2.Stop(ctx, t0.Add(3*time.Minute)))
	ws, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ws.Timer.Running)
	assert.Nil(t, ws.Timer.Anchor)
	assert.Equal(t, 180, ws.Timer.ElapsedSeconds)
}

func TestLoad_RunningWithoutAnchor(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, func(ws *models.WorkoutState) error {
		ws.Timer = models.TimerState{Running: true, ElapsedSeconds: 42}
		return nil
	}))

	c, err := Load(ctx, repo, t0)
	require.NoError(t, err)
	assert.Equal(t, 42, c.Snapshot().ElapsedSeconds)
	assert.Equal(t, 52, c.Tick(t0.Add(10*time.Second)).ElapsedSeconds)
}

func TestRestSeconds(t *testing.T) {
	tests := []struct {
		name string
		text string
		prev int
		want int
	}{
		{"whole minutes", "2", 0, 120},
		{"fractional", "1.5", 0, 90},
		{"units stripped", "1.5 min", 0, 90},
		{"garbage defaults to one minute", "abc", 0, 60},
		{"empty reuses previous", "", 45, 45},
		{"zero reuses previous", "0", 150, 150},
		{"second dot ends the number", "1.5.2", 0, 90},
		{"trailing dot after units", "1.5 min.", 0, 90},
		{"leading dot", ".5", 0, 30},
		{"lone dot reuses previous", ".", 120, 120},
		{"tiny rounds up to one second", "0.001", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RestSeconds(tt.text, tt.prev))
		})
	}
}

func TestStartRest_Countdown(t *testing.T) {
	c := New(nil, models.TimerState{})

	secs, ok := c.StartRest("abc", t0)
	require.True(t, ok)
	assert.Equal(t, 60, secs)

	snap := c.Tick(t0.Add(15 * time.Second))
	require.NotNil(t, snap.Rest)
	assert.True(t, snap.Rest.Active)
	assert.Equal(t, 60, snap.Rest.TotalSeconds)
	assert.Equal(t, 45, snap.Rest.RemainingSeconds)

	snap = c.Tick(t0.Add(61 * time.Second))
	require.NotNil(t, snap.Rest)
	assert.False(t, snap.Rest.Active, "countdown clears itself at zero")
	assert.Zero(t, snap.Rest.RemainingSeconds)

	// Previous total is reused for unusable input.
	secs, ok = c.StartRest("", t0.Add(70*time.Second))
	require.True(t, ok)
	assert.Equal(t, 60, secs)
}

func TestStartRest_OnlyOneActive(t *testing.T) {
	c := New(nil, models.TimerState{})

	_, ok := c.StartRest("2", t0)
	require.True(t, ok)

	secs, ok := c.StartRest("5", t0.Add(time.Second))
	assert.False(t, ok)
	assert.Equal(t, 120, secs)
}

func TestStopRest(t *testing.T) {
	c := New(nil, models.TimerState{})

	_, ok := c.StartRest("1", t0)
	require.True(t, ok)
	c.StopRest()

	assert.Nil(t, c.Tick(t0.Add(5*time.Second)).Rest)

	_, ok = c.StartRest("1", t0.Add(6*time.Second))
	assert.True(t, ok, "a stopped countdown can be restarted")
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(nil, models.TimerState{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		ticks int
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx, time.Millisecond, func(Snapshot) {
			mu.Lock()
			ticks++
			n := ticks
			mu.Unlock()
			if n == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, ticks, 3)
}
