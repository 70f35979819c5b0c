package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/joescharf/rutina/internal/catalog"
	"github.com/joescharf/rutina/internal/engine"
	"github.com/joescharf/rutina/internal/history"
	"github.com/joescharf/rutina/internal/override"
	"github.com/joescharf/rutina/internal/progress"
	"github.com/joescharf/rutina/internal/state"
	"github.com/joescharf/rutina/internal/store"
)

// appDeps bundles the stores and the engine built on the shared database.
type appDeps struct {
	loc       *time.Location
	catalog   *catalog.Catalog
	state     *state.Repo
	progress  *progress.Store
	history   *history.Store
	overrides *override.Store
	engine    *engine.Engine
}

// getDeps returns the shared dependencies, building them on first call.
// The weekly checklist reset runs once here, as the process starts using
// the data.
func getDeps() (*appDeps, error) {
	if deps != nil {
		return deps, nil
	}

	s, err := getStore()
	if err != nil {
		return nil, err
	}
	d, err := newAppDeps(s, ui)
	if err != nil {
		return nil, err
	}

	if ran, err := d.engine.WeeklyReset(context.Background()); err != nil {
		slog.Warn("weekly reset failed", "error", err)
	} else if ran {
		ui.VerboseLog("New week: checklists cleared")
	}

	deps = d
	return deps, nil
}

// newAppDeps wires the stores and engine from the current configuration.
// notifier may be nil.
func newAppDeps(s store.Store, notifier engine.Notifier) (*appDeps, error) {
	loc, err := loadLocation(viper.GetString("timezone"))
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	keys := store.Keys{App: viper.GetString("app_prefix")}
	if keys.App == "" {
		keys = store.DefaultKeys
	}

	repo := state.NewRepo(s, keys)
	d := &appDeps{
		loc:       loc,
		catalog:   cat,
		state:     repo,
		progress:  progress.NewStore(s, keys),
		history:   history.NewStore(repo, loc, viper.GetInt("history.max_sessions")),
		overrides: override.NewStore(s, keys),
	}

	edeps := engine.Deps{
		Catalog:   d.catalog,
		Progress:  d.progress,
		History:   d.history,
		State:     d.state,
		Overrides: d.overrides,
	}
	if notifier != nil {
		edeps.Notifier = notifier
	}
	d.engine = engine.New(edeps, engine.Config{
		UndoWindow:              viper.GetDuration("undo_window"),
		MinutesPerExercise:      viper.GetInt("engine.minutes_per_exercise"),
		DefaultDurationMinutes:  viper.GetInt("engine.default_duration"),
		AllowDuplicatePromotion: viper.GetBool("engine.allow_duplicate_promotion"),
		Location:                loc,
	})
	return d, nil
}

// loadLocation resolves the configured time zone; empty means system local.
func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// selectedOr returns id, or the selected routine when id is empty.
func (d *appDeps) selectedOr(ctx context.Context, id string) (string, error) {
	if id != "" {
		if _, err := d.catalog.Routine(id); err != nil {
			return "", err
		}
		return id, nil
	}
	st, err := d.state.Load(ctx)
	if err != nil {
		return "", err
	}
	if st.SelectedRoutineID == "" {
		return "", fmt.Errorf("no routine selected (use 'rutina routine select <id>' or --routine)")
	}
	return st.SelectedRoutineID, nil
}
