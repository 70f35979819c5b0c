package models

import "time"

// WorkoutState is the document persisted under "{app}:workouts".
type WorkoutState struct {
	SelectedRoutineID string           `json:"selectedRoutineId,omitempty"`
	CustomWorkouts    []CustomWorkout  `json:"customWorkouts"`
	History           []WorkoutSession `json:"history"`
	LastWeeklyReset   string           `json:"lastWeeklyReset,omitempty"`
	Timer             TimerState       `json:"timer"`
}

// TimerState is the persisted stopwatch state.
type TimerState struct {
	Running        bool `json:"running"`
	Expanded       bool `json:"expanded"`
	ElapsedSeconds int  `json:"elapsedSeconds"`
	// Anchor is the instant for which elapsed = now - Anchor while running.
	Anchor *time.Time `json:"anchor,omitempty"`
}

// CustomWorkout is a user-defined workout outside the catalog.
type CustomWorkout struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	FocusAreas []string                `json:"focusAreas"`
	Exercises  []CustomWorkoutExercise `json:"exercises"`
}

// CustomWorkoutExercise is a free-form exercise of a custom workout.
type CustomWorkoutExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Load string `json:"load,omitempty"`
}

// UserGoal is the goal chosen during onboarding.
type UserGoal string

const (
	UserGoalHealth      UserGoal = "health"
	UserGoalFatLoss     UserGoal = "fat-loss"
	UserGoalMuscle      UserGoal = "muscle"
	UserGoalPerformance UserGoal = "performance"
)

// UserProfile is the document persisted under "{app}:user".
type UserProfile struct {
	Name               string   `json:"name,omitempty"`
	Age                int      `json:"age,omitempty"`
	HeightCm           float64  `json:"height,omitempty"`
	WeightKg           float64  `json:"weight,omitempty"`
	Goal               UserGoal `json:"goal,omitempty"`
	Level              Level    `json:"level,omitempty"`
	FocusAreas         []string `json:"focusAreas,omitempty"`
	WeeklyFrequency    int      `json:"weeklyFrequency,omitempty"`
	OnboardingComplete bool     `json:"onboardingComplete,omitempty"`
}
