// Package catalog holds the read-only routine and exercise reference data.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/rutina/internal/calendar"
	"github.com/joescharf/rutina/internal/models"
)

//go:embed data/routines.yaml
var routinesYAML []byte

//go:embed data/exercises.yaml
var exercisesYAML []byte

// ErrRoutineNotFound is returned when a routine id is not in the catalog.
var ErrRoutineNotFound = errors.New("routine not found")

// Catalog indexes routines and exercises by id.
type Catalog struct {
	routines  []models.RoutinePlan
	exercises []models.Exercise
	byID      map[string]models.Exercise
}

// New builds a Catalog from already-decoded data.
func New(routines []models.RoutinePlan, exercises []models.Exercise) *Catalog {
	c := &Catalog{
		routines:  routines,
		exercises: exercises,
		byID:      make(map[string]models.Exercise, len(exercises)),
	}
	for _, e := range exercises {
		c.byID[e.ID] = e
	}
	return c
}

// Parse decodes YAML routine and exercise lists into a Catalog.
func Parse(routinesData, exercisesData []byte) (*Catalog, error) {
	var routines []models.RoutinePlan
	if err := yaml.Unmarshal(routinesData, &routines); err != nil {
		return nil, fmt.Errorf("parse routines: %w", err)
	}
	var exercises []models.Exercise
	if err := yaml.Unmarshal(exercisesData, &exercises); err != nil {
		return nil, fmt.Errorf("parse exercises: %w", err)
	}
	return New(routines, exercises), nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(routinesYAML, exercisesYAML)
}

// Routines returns every routine in catalog order.
func (c *Catalog) Routines() []models.RoutinePlan {
	return c.routines
}

// Routine returns the routine with id.
func (c *Catalog) Routine(id string) (models.RoutinePlan, error) {
	for _, r := range c.routines {
		if r.ID == id {
			return r, nil
		}
	}
	return models.RoutinePlan{}, fmt.Errorf("%w: %s", ErrRoutineNotFound, id)
}

// Block returns the day block of routineID scheduled on weekday. ok is false
// when the routine has no block for that day.
func (c *Catalog) Block(routineID, weekday string) (block models.RoutineWorkout, ok bool, err error) {
	r, err := c.Routine(routineID)
	if err != nil {
		return models.RoutineWorkout{}, false, err
	}
	for _, w := range r.Workouts {
		if calendar.SameWeekday(w.Day, weekday) {
			return w, true, nil
		}
	}
	return models.RoutineWorkout{}, false, nil
}

// Exercises returns the exercise library in catalog order.
func (c *Catalog) Exercises() []models.Exercise {
	return c.exercises
}

// Exercise looks up an exercise by id.
func (c *Catalog) Exercise(id string) (models.Exercise, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// ExerciseName returns the display name of id, or id itself when unknown.
func (c *Catalog) ExerciseName(id string) string {
	if e, ok := c.byID[id]; ok && e.Name != "" {
		return e.Name
	}
	return id
}
