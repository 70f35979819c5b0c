// Package progress tracks which exercises of a routine are ticked off per day.
//
// Each routine's record lives under "RoutineProgress:{routineId}" as a map from
// ISO day to exercise ids. Routine ids that currently hold a record are listed
// in a registry key so a sweep never has to enumerate the key space.
package progress

import (
	"context"
	"slices"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/joescharf/rutina/internal/store"
)

// Record maps an ISO day to the exercise ids completed that day.
type Record map[string][]string

// Store reads and writes per-routine progress records.
type Store struct {
	kv   store.Store
	keys store.Keys
	mu   sync.Mutex
}

// NewStore creates a progress Store over kv.
func NewStore(kv store.Store, keys store.Keys) *Store {
	return &Store{kv: kv, keys: keys}
}

func (s *Store) load(ctx context.Context, routineID string) (Record, error) {
	rec, err := store.GetJSON(ctx, s.kv, s.keys.Progress(routineID), Record{})
	if rec == nil {
		rec = Record{}
	}
	return rec, err
}

// save persists rec, deleting the key (and its registry entry) once it is empty.
func (s *Store) save(ctx context.Context, routineID string, rec Record) error {
	if len(rec) == 0 {
		if err := s.kv.Delete(ctx, s.keys.Progress(routineID)); err != nil {
			return err
		}
		return s.unregister(ctx, routineID)
	}
	if err := store.SetJSON(ctx, s.kv, s.keys.Progress(routineID), rec); err != nil {
		return err
	}
	return s.register(ctx, routineID)
}

func (s *Store) index(ctx context.Context) ([]string, error) {
	return store.GetJSON(ctx, s.kv, s.keys.ProgressIndex(), []string{})
}

func (s *Store) register(ctx context.Context, routineID string) error {
	ids, err := s.index(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, routineID) {
		return nil
	}
	ids = append(ids, routineID)
	sort.Strings(ids)
	return store.SetJSON(ctx, s.kv, s.keys.ProgressIndex(), ids)
}

func (s *Store) unregister(ctx context.Context, routineID string) error {
	ids, err := s.index(ctx)
	if err != nil {
		return err
	}
	i := slices.Index(ids, routineID)
	if i < 0 {
		return nil
	}
	return store.SetJSON(ctx, s.kv, s.keys.ProgressIndex(), slices.Delete(ids, i, i+1))
}

// Routines lists the routine ids that currently have stored progress.
func (s *Store) Routines(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(ctx)
}

// IsDone reports whether exerciseID is marked complete on day.
func (s *Store) IsDone(ctx context.Context, routineID, day, exerciseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, routineID)
	if err != nil {
		return false, err
	}
	return slices.Contains(rec[day], exerciseID), nil
}

// Toggle flips exerciseID's membership for day, persists, and returns the new state.
func (s *Store) Toggle(ctx context.Context, routineID, day, exerciseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, routineID)
	if err != nil {
		return false, err
	}

	done := rec[day]
	var now bool
	if i := slices.Index(done, exerciseID); i >= 0 {
		done = slices.Delete(done, i, i+1)
	} else {
		done = append(done, exerciseID)
		now = true
	}
	if len(done) == 0 {
		delete(rec, day)
	} else {
		rec[day] = done
	}

	if err := s.save(ctx, routineID, rec); err != nil {
		return !now, err
	}
	return now, nil
}

// Done returns the exercise ids marked complete on day, in the order they were ticked.
func (s *Store) Done(ctx context.Context, routineID, day string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, routineID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(rec[day]), nil
}

// AllDone reports whether every id in ids is complete on day. An empty ids
// list is vacuously complete; callers must guard zero-exercise days.
func (s *Store) AllDone(ctx context.Context, routineID, day string, ids []string) (bool, error) {
	done, err := s.Done(ctx, routineID, day)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if !slices.Contains(done, id) {
			return false, nil
		}
	}
	return true, nil
}

// ClearDay removes day's entry entirely.
func (s *Store) ClearDay(ctx context.Context, routineID, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, routineID)
	if err != nil {
		return err
	}
	if _, ok := rec[day]; !ok {
		return nil
	}
	delete(rec, day)
	return s.save(ctx, routineID, rec)
}

// Restore sets day's entry to exactly ids (duplicates collapsed).
func (s *Store) Restore(ctx context.Context, routineID, day string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, routineID)
	if err != nil {
		return err
	}

	var set []string
	for _, id := range ids {
		if !slices.Contains(set, id) {
			set = append(set, id)
		}
	}
	if len(set) == 0 {
		delete(rec, day)
	} else {
		rec[day] = set
	}
	return s.save(ctx, routineID, rec)
}

// SweepAll deletes the progress record of every registered routine and
// returns how many records were removed. Routines whose delete failed stay
// registered so a later sweep retries them.
func (s *Store) SweepAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.index(ctx)
	if err != nil {
		return 0, err
	}

	var errs error
	var remaining []string
	for _, id := range ids {
		if err := s.kv.Delete(ctx, s.keys.Progress(id)); err != nil {
			errs = multierr.Append(errs, err)
			remaining = append(remaining, id)
		}
	}

	if len(remaining) == 0 {
		errs = multierr.Append(errs, s.kv.Delete(ctx, s.keys.ProgressIndex()))
	} else {
		errs = multierr.Append(errs, store.SetJSON(ctx, s.kv, s.keys.ProgressIndex(), remaining))
	}
	return len(ids) - len(remaining), errs
}
