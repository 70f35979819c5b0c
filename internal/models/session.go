package models

import "time"

// WorkoutSession is a logged workout. Sessions are immutable once created;
// they can only be deleted.
type WorkoutSession struct {
	ID                 string              `json:"id"`
	RoutineID          string              `json:"routineId"`
	Date               string              `json:"date"` // RFC3339
	PerceivedEffort    float64             `json:"perceivedEffort"`
	DurationMinutes    int                 `json:"durationMinutes"`
	TotalVolume        float64             `json:"totalVolume"`
	Notes              string              `json:"notes,omitempty"`
	PerformedExercises []PerformedExercise `json:"performedExercises,omitempty"`
}

// PerformedExercise is a snapshot of an exercise as it was when a session was logged.
type PerformedExercise struct {
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name,omitempty"`
	Sets       int    `json:"sets,omitempty"`
	Reps       string `json:"reps,omitempty"`
}

// DayState is the reconciliation state of one routine day.
type DayState string

const (
	DayStateUntouched DayState = "untouched"
	DayStatePartial   DayState = "partial"
	DayStateAllDone   DayState = "all_done"
	DayStateLogged    DayState = "logged"
)

// UndoToken lets the most recent day promotion be reverted until ExpiresAt.
// It is held in memory only.
type UndoToken struct {
	SessionID           string    `json:"sessionId"`
	RoutineID           string    `json:"routineId"`
	ISODate             string    `json:"isoDate"`
	RestoredExerciseIDs []string  `json:"restoredExerciseIds"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

// Expired reports whether the token can no longer be consumed at now.
func (t *UndoToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
