package stats

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/models"
)

// VolumeWeeks is the number of ISO weeks covered by WeeklyVolume.
const VolumeWeeks = 6

// DefaultWeeklyTarget is the session goal used when the profile sets none.
const DefaultWeeklyTarget = 3

// WeekVolume is the total logged volume of one ISO week.
type WeekVolume struct {
	Week   string  `json:"week"`
	Volume float64 `json:"volume"`
}

// Summary holds the training statistics derived from session history.
type Summary struct {
	TotalSessions    int          `json:"totalSessions"`
	AverageDuration  int          `json:"averageDuration"` // minutes
	HasSessions      bool         `json:"hasSessions"`
	DaysSinceLast    int          `json:"daysSinceLast"`
	Streak           int          `json:"streak"` // consecutive days
	SessionsThisWeek int          `json:"sessionsThisWeek"`
	WeeklyTarget     int          `json:"weeklyTarget"`
	Compliance       int          `json:"compliance"` // 0-100
	WeeklyVolume     []WeekVolume `json:"weeklyVolume"`
}

// Calculator computes statistics in a fixed time zone.
type Calculator struct {
	loc *time.Location
}

// NewCalculator returns a Calculator for loc (local time when nil).
func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{loc: loc}
}

// Summarize computes a Summary of history as of now. profile may be nil.
func (c *Calculator) Summarize(history []models.WorkoutSession, profile *models.UserProfile, now time.Time) *Summary {
	now = now.In(c.loc)
	s := &Summary{
		TotalSessions: len(history),
		WeeklyTarget:  DefaultWeeklyTarget,
	}
	if profile != nil && profile.WeeklyFrequency > 0 {
		s.WeeklyTarget = profile.WeeklyFrequency
	}

	dated := c.parse(history)

	// Average duration (all sessions)
	total := 0
	for _, sess := range history {
		total += sess.DurationMinutes
	}
	if len(history) > 0 {
		s.AverageDuration = int(math.Round(float64(total) / float64(len(history))))
	}

	// Recency
	today := midnight(now)
	if len(dated) > 0 {
		s.HasSessions = true
		s.DaysSinceLast = daysBetween(midnight(dated[0].at), today)
	}
	s.Streak = streak(dated, today)

	// This week vs target
	start := calendar.StartOfWeek(now)
	for _, d := range dated {
		if !d.at.Before(start) && !d.at.After(now) {
			s.SessionsThisWeek++
		}
	}
	s.Compliance = min(100, s.SessionsThisWeek*100/s.WeeklyTarget)

	s.WeeklyVolume = weeklyVolume(dated, now)
	return s
}

type datedSession struct {
	at     time.Time
	volume float64
}

// parse returns the sessions with readable dates, most recent first.
func (c *Calculator) parse(history []models.WorkoutSession) []datedSession {
	out := make([]datedSession, 0, len(history))
	for _, sess := range history {
		t, err := time.Parse(time.RFC3339Nano, sess.Date)
		if err != nil {
			slog.Debug("skipping session with unreadable date", "id", sess.ID, "date", sess.Date)
			continue
		}
		out = append(out, datedSession{at: t.In(c.loc), volume: sess.TotalVolume})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.After(out[j].at) })
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, both local midnights.
func daysBetween(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// streak counts consecutive training days ending today, or yesterday when
// nothing is logged yet today.
func streak(dated []datedSession, today time.Time) int {
	days := map[string]bool{}
	for _, d := range dated {
		days[calendar.ToISODay(d.at)] = true
	}

	cursor := today
	if !days[calendar.ToISODay(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	n := 0
	for days[calendar.ToISODay(cursor)] {
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return n
}

// weeklyVolume sums volume per ISO week for the VolumeWeeks weeks ending
// with now's week, oldest first. Weeks without sessions report zero.
func weeklyVolume(dated []datedSession, now time.Time) []WeekVolume {
	out := make([]WeekVolume, VolumeWeeks)
	index := make(map[string]int, VolumeWeeks)
	for i := range VolumeWeeks {
		wk := calendar.WeekIdentifier(now.AddDate(0, 0, -7*(VolumeWeeks-1-i)))
		out[i].Week = wk
		index[wk] = i
	}
	for _, d := range dated {
		if i, ok := index[calendar.WeekIdentifier(d.at)]; ok {
			out[i].Volume += d.volume
		}
	}
	return out
}
