// Package timer implements the workout stopwatch and the rest countdown.
//
// A Controller owns both. It never reads the clock itself: every method that
// depends on time takes the current instant, and Run feeds it ticker times.
package timer

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joescharf/rutina/internal/models"
	"github.com/joescharf/rutina/internal/state"
)

// DefaultRestMinutes is used when the rest input is unusable and no rest
// has been started before.
const DefaultRestMinutes = 1

// Rest is the countdown part of a Snapshot.
type Rest struct {
	TotalSeconds     int  `json:"totalSeconds"`
	RemainingSeconds int  `json:"remainingSeconds"`
	Active           bool `json:"active"`
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Running        bool  `json:"running"`
	Expanded       bool  `json:"expanded"`
	ElapsedSeconds int   `json:"elapsedSeconds"`
	Rest           *Rest `json:"rest,omitempty"`
}

// Controller drives the stopwatch and rest countdown. Stopwatch state is
// written to the workout document on every transition; rest state lives in
// memory only.
type Controller struct {
	repo *state.Repo

	mu sync.Mutex
	st models.TimerState

	restTotal     int
	restRemaining *int
	restDeadline  time.Time
	restActive    bool
}

// New creates a controller from st. A nil repo keeps everything in memory.
func New(repo *state.Repo, st models.TimerState) *Controller {
	return &Controller{repo: repo, st: st}
}

// Load restores the stopwatch from repo. A running stopwatch saved without
// an anchor resumes from its elapsed time at now.
func Load(ctx context.Context, repo *state.Repo, now time.Time) (*Controller, error) {
	ws, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	st := ws.Timer
	if st.Running && st.Anchor == nil {
		anchor := now.Add(-time.Duration(st.ElapsedSeconds) * time.Second)
		st.Anchor = &anchor
	}
	c := New(repo, st)
	c.tick(now)
	return c, nil
}

func (c *Controller) save(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	st := c.st
	return c.repo.Update(ctx, func(ws *models.WorkoutState) error {
		ws.Timer = st
		return nil
	})
}

// Start resumes the stopwatch from its current elapsed time.
func (c *Controller) Start(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Running {
		return nil
	}
	anchor := now.Add(-time.Duration(c.st.ElapsedSeconds) * time.Second)
	c.st.Running = true
	c.st.Anchor = &anchor
	return c.save(ctx)
}

// Stop pauses the stopwatch, keeping the elapsed time.
func (c *Controller) Stop(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.st.Running {
		return nil
	}
	c.tick(now)
	c.st.Running = false
	c.st.Anchor = nil
	return c.save(ctx)
}

// Reset stops the stopwatch and zeroes it.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.st.Running = false
	c.st.Anchor = nil
	c.st.ElapsedSeconds = 0
	return c.save(ctx)
}

// ToggleExpanded flips the expanded display flag.
func (c *Controller) ToggleExpanded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.st.Expanded = !c.st.Expanded
	return c.save(ctx)
}

// Tick advances both clocks to now and returns the resulting snapshot.
// Elapsed time is derived from the anchor, so missed ticks never drift.
func (c *Controller) Tick(now time.Time) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick(now)
	return c.snapshot()
}

func (c *Controller) tick(now time.Time) {
	if c.st.Running && c.st.Anchor != nil {
		secs := int(now.Sub(*c.st.Anchor) / time.Second)
		c.st.ElapsedSeconds = max(0, secs)
	}
	if c.restActive {
		left := int(math.Ceil(c.restDeadline.Sub(now).Seconds()))
		if left <= 0 {
			left = 0
			c.restActive = false
		}
		c.restRemaining = &left
	}
}

// Snapshot returns the state as of the last tick.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		Running:        c.st.Running,
		Expanded:       c.st.Expanded,
		ElapsedSeconds: c.st.ElapsedSeconds,
	}
	if c.restRemaining != nil {
		s.Rest = &Rest{
			TotalSeconds:     c.restTotal,
			RemainingSeconds: *c.restRemaining,
			Active:           c.restActive,
		}
	}
	return s
}

// StartRest begins a countdown of the minutes written in text and returns
// its length in seconds. Only digits and dots are read from text; an
// unusable value falls back to the previous rest length or one minute.
// It reports false, leaving the running countdown alone, if one is active.
func (c *Controller) StartRest(text string, now time.Time) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.restActive {
		return c.restTotal, false
	}

	secs := RestSeconds(text, c.restTotal)
	c.restTotal = secs
	c.restRemaining = &secs
	c.restDeadline = now.Add(time.Duration(secs) * time.Second)
	c.restActive = true
	return secs, true
}

// StopRest cancels the countdown and clears the remaining time.
func (c *Controller) StopRest() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.restActive = false
	c.restRemaining = nil
}

// RestSeconds converts free-form minutes text into whole seconds (at least
// one). prevTotal, in seconds, is used when text holds no positive number.
func RestSeconds(text string, prevTotal int) int {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	minutes, err := strconv.ParseFloat(numericPrefix(cleaned), 64)
	if err != nil || !(minutes > 0) || math.IsInf(minutes, 0) {
		if prevTotal > 0 {
			minutes = float64(prevTotal) / 60
		} else {
			minutes = DefaultRestMinutes
		}
	}
	return max(1, int(math.Round(minutes*60)))
}

// numericPrefix returns the leading digits of s with at most one decimal
// point, so "1.5.2" reads as "1.5".
func numericPrefix(s string) string {
	dot := false
	for i, r := range s {
		if r == '.' {
			if dot {
				return s[:i]
			}
			dot = true
		}
	}
	return s
}

// Run ticks the controller every interval until ctx is done, passing each
// snapshot to onTick. It is the only place that schedules ticks and it
// stops its ticker before returning.
func (c *Controller) Run(ctx context.Context, interval time.Duration, onTick func(Snapshot)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			snap := c.Tick(now)
			if onTick != nil {
				onTick(snap)
			}
		}
	}
}
