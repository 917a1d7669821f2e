// Package migrate runs named, ordered schema migrations against a graph
// store. Each migration declares the revision it replaces, forming a linear
// chain from the empty store to the head revision; the applied revision is
// recorded in the store itself so re-running is cheap and safe.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// Head names the latest registered revision.
	Head = "head"
	// None is the revision of a brand-new store.
	None = ""
)

// RunType selects between planning and executing.
type RunType bool

var (
	// DryRun resolves and validates the migration plan without executing it.
	DryRun RunType = true
	// LiveRun executes the plan.
	LiveRun RunType = false
)

// MigrationFunc performs one migration step against a store handle.
type MigrationFunc[T any] func(ctx context.Context, store T) error

// Driver abstracts reading and writing the schema revision of a migrateable
// backing store.
type Driver[T any] interface {
	// Version returns the store's current schema revision, or None for a
	// brand-new store.
	Version(ctx context.Context) (string, error)

	// WriteVersion records the newly migrated revision.
	WriteVersion(ctx context.Context, store T, version, replaced string) error

	// Exec runs a migration function against the store handle.
	Exec(ctx context.Context, f MigrationFunc[T]) error

	// Close frees driver resources.
	Close(ctx context.Context) error
}

type migration[T any] struct {
	version  string
	replaces string
	up       MigrationFunc[T]
}

// Manager holds a self-contained set of migrations. Instantiate one per
// application and register migrations statically.
type Manager[D Driver[T], T any] struct {
	migrations map[string]migration[T]
}

// NewManager creates an empty migration manager.
func NewManager[D Driver[T], T any]() *Manager[D, T] {
	return &Manager[D, T]{migrations: make(map[string]migration[T])}
}

// Register associates a migration with the manager. The replaces argument
// names the revision this migration upgrades from (None for the first).
func (m *Manager[D, T]) Register(version, replaces string, up MigrationFunc[T]) error {
	if strings.ToLower(version) == Head {
		return fmt.Errorf("unable to register revision named %q", Head)
	}
	if _, ok := m.migrations[version]; ok {
		return fmt.Errorf("revision already registered: %s", version)
	}

	m.migrations[version] = migration[T]{
		version:  version,
		replaces: replaces,
		up:       up,
	}
	return nil
}

// Run migrates the backing store from its current revision through the
// requested revision (Head for the latest).
func (m *Manager[D, T]) Run(ctx context.Context, driver D, throughRevision string, dryRun RunType) error {
	starting, err := driver.Version(ctx)
	if err != nil {
		return fmt.Errorf("unable to read current revision: %w", err)
	}

	if strings.ToLower(throughRevision) == Head {
		throughRevision, err = m.HeadRevision()
		if err != nil {
			return fmt.Errorf("unable to compute head revision: %w", err)
		}
	}

	toRun, err := collectMigrationsInRange(starting, throughRevision, m.migrations)
	if err != nil {
		return fmt.Errorf("unable to compute migration plan: %w", err)
	}

	if dryRun {
		for _, step := range toRun {
			slog.Info("would migrate",
				slog.String("from", step.replaces),
				slog.String("to", step.version))
		}
		return nil
	}

	for _, step := range toRun {
		// The recorded revision can have moved since planning; refuse to run
		// a step out of order.
		current, err := driver.Version(ctx)
		if err != nil {
			return fmt.Errorf("unable to read revision from driver: %w", err)
		}
		if step.replaces != current {
			return fmt.Errorf("migration out of order: store at %q, step expects %q", current, step.replaces)
		}

		slog.Info("migrating",
			slog.String("from", step.replaces),
			slog.String("to", step.version))

		step := step
		err = driver.Exec(ctx, func(ctx context.Context, store T) error {
			if err := step.up(ctx, store); err != nil {
				return err
			}
			return driver.WriteVersion(ctx, store, step.version, step.replaces)
		})
		if err != nil {
			return fmt.Errorf("error executing migration %q: %w", step.version, err)
		}
	}

	return nil
}

// HeadRevision returns the revision no other migration replaces.
func (m *Manager[D, T]) HeadRevision() (string, error) {
	candidates := make(map[string]struct{}, len(m.migrations))
	for candidate := range m.migrations {
		candidates[candidate] = struct{}{}
	}
	for _, mig := range m.migrations {
		delete(candidates, mig.replaces)
	}

	heads := make([]string, 0, len(candidates))
	for head := range candidates {
		heads = append(heads, head)
	}
	if len(heads) != 1 {
		return "", fmt.Errorf("multiple or zero head revisions found: %v", heads)
	}
	return heads[0], nil
}

// IsHeadCompatible reports whether a revision is the head or directly behind it.
func (m *Manager[D, T]) IsHeadCompatible(revision string) (bool, error) {
	head, err := m.HeadRevision()
	if err != nil {
		return false, err
	}
	headMigration := m.migrations[head]
	return revision == headMigration.version || revision == headMigration.replaces, nil
}

func collectMigrationsInRange[T any](starting, through string, all map[string]migration[T]) ([]migration[T], error) {
	var found []migration[T]

	lookingFor := through
	for lookingFor != starting {
		mig, ok := all[lookingFor]
		if !ok {
			return nil, fmt.Errorf("unable to find migration for revision: %s", lookingFor)
		}
		found = append([]migration[T]{mig}, found...)
		lookingFor = mig.replaces
	}

	return found, nil
}
