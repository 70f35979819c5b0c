package models

// RoutineGoal is the training goal a routine is built for.
type RoutineGoal string

const (
	RoutineGoalFatLoss     RoutineGoal = "fat-loss"
	RoutineGoalHypertrophy RoutineGoal = "hypertrophy"
	RoutineGoalStrength    RoutineGoal = "strength"
	RoutineGoalPerformance RoutineGoal = "performance"
)

// Level is a training experience level shared by routines and user profiles.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// RoutinePlan is a static, read-only training program from the catalog.
type RoutinePlan struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Goal            RoutineGoal      `json:"goal" yaml:"goal"`
	Level           Level            `json:"level" yaml:"level"`
	FocusAreas      []string         `json:"focusAreas" yaml:"focus_areas"`
	SessionsPerWeek int              `json:"sessionsPerWeek" yaml:"sessions_per_week"`
	DurationWeeks   int              `json:"durationWeeks" yaml:"duration_weeks"`
	Summary         string           `json:"summary" yaml:"summary"`
	Workouts        []RoutineWorkout `json:"workouts" yaml:"workouts"`
}

// RoutineWorkout is one day block of a routine, labelled by a weekday name.
type RoutineWorkout struct {
	Day       string            `json:"day" yaml:"day"`
	Title     string            `json:"title" yaml:"title"`
	Exercises []RoutineExercise `json:"exercises" yaml:"exercises"`
}

// ExerciseIDs returns the exercise ids of the block in schedule order.
func (w RoutineWorkout) ExerciseIDs() []string {
	ids := make([]string, len(w.Exercises))
	for i, e := range w.Exercises {
		ids[i] = e.ExerciseID
	}
	return ids
}

// RoutineExercise is a scheduled exercise inside a day block.
type RoutineExercise struct {
	ExerciseID string `json:"exerciseId" yaml:"exercise_id"`
	Sets       int    `json:"sets" yaml:"sets"`
	Reps       string `json:"reps" yaml:"reps"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Exercise is an entry of the exercise library.
type Exercise struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	PrimaryMuscle string `json:"primaryMuscle" yaml:"primary_muscle"`
	Equipment     string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
}

// ExerciseOverride replaces the scheduled sets/reps/notes of one exercise on one day.
type ExerciseOverride struct {
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Note string `json:"note,omitempty"`
}
