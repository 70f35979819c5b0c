// Package calendar maps weekday labels and instants onto local calendar days.
//
// Every function works in the location carried by its time argument (or the
// location passed explicitly), so callers pick one zone and use it for
// weekday resolution, progress keys and session lookups alike.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DayLayout is the ISO day format used as progress and history key.
const DayLayout = "2006-01-02"

// FallbackWeekday is used for labels that cannot be recognised.
const FallbackWeekday = time.Monday

var weekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// fold lowercases s and strips combining marks, so "Miércoles" becomes "miercoles".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// ParseWeekday resolves a weekday label in Spanish or English, ignoring case
// and accents.
func ParseWeekday(label string) (time.Weekday, bool) {
	wd, ok := weekdays[fold(label)]
	return wd, ok
}

// SameWeekday reports whether two labels name the same day ("Sábado" and "sabado").
func SameWeekday(a, b string) bool {
	wa, okA := ParseWeekday(a)
	wb, okB := ParseWeekday(b)
	if okA && okB {
		return wa == wb
	}
	return fold(a) == fold(b)
}

// StartOfWeek returns local midnight of the Sunday that starts t's week.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

// WeekdayToDate returns local midnight of the named day within the week
// containing now. Unknown labels resolve to Monday.
func WeekdayToDate(label string, now time.Time) time.Time {
	wd, ok := ParseWeekday(label)
	if !ok {
		wd = FallbackWeekday
	}
	return StartOfWeek(now).AddDate(0, 0, int(wd))
}

// ToISODay formats the calendar day of t in t's own location.
func ToISODay(t time.Time) string {
	return t.Format(DayLayout)
}

// DayOfTimestamp returns the local ISO day of an RFC3339 timestamp in loc.
// Bare YYYY-MM-DD values are returned as-is.
func DayOfTimestamp(ts string, loc *time.Location) (string, error) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return ToISODay(t.In(loc)), nil
	}
	if t, err := time.ParseInLocation(DayLayout, ts, loc); err == nil {
		return ToISODay(t), nil
	}
	return "", fmt.Errorf("unrecognised timestamp %q", ts)
}

// ParseDay parses a YYYY-MM-DD day as local midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// WeekIdentifier labels the ISO week of t's local date, e.g. "2024-W23".
func WeekIdentifier(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}
