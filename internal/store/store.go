package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned by Get when no value is stored under a key.
var ErrNotFound = errors.New("key not found")

// Store is the key-value persistence interface for rutina. Values are opaque
// bytes; the JSON helpers below are what callers normally use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Keys derives the storage keys used by rutina from an application prefix.
type Keys struct {
	App string
}

// DefaultKeys uses the "Rutina" application prefix.
var DefaultKeys = Keys{App: "Rutina"}

func (k Keys) Workouts() string      { return k.App + ":workouts" }
func (k Keys) User() string          { return k.App + ":user" }
func (k Keys) ProgressIndex() string { return k.App + ":progress-index" }

// Progress returns the key of a routine's per-day exercise progress.
func (k Keys) Progress(routineID string) string { return "RoutineProgress:" + routineID }

// Overrides returns the key of a routine's exercise overrides.
func (k Keys) Overrides(routineID string) string { return "RoutineOverrides:" + routineID }

// GetJSON loads the value under key into a T. Missing keys and undecodable
// values both yield fallback; corrupt data is logged and never returned as an
// error. Only backend failures are returned.
func GetJSON[T any](ctx context.Context, s Store, key string, fallback T) (T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("load %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("discarding unreadable stored value", "key", key, "error", err)
		return fallback, nil
	}
	return v, nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// NewID generates a new ULID string. IDs are monotonic within a process.
func NewID() string {
	return ulid.Make().String()
}
