package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/internal/config"
	agerrors "github.com/agrigpt/agrigraph/internal/errors"
	"github.com/agrigpt/agrigraph/internal/ledger"
	"github.com/agrigpt/agrigraph/internal/migrate"
	"github.com/agrigpt/agrigraph/internal/ui"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage graph schema migrations",
		Long: `Manage the graph schema: uniqueness constraints, lookup indexes,
the crop full-text index, and the slug backfill.

Every declaration is conditional (IF NOT EXISTS), so applying the schema
to a store that already has it changes nothing.`,
	}

	cmd.AddCommand(newSchemaApplyCmd())
	cmd.AddCommand(newSchemaStatusCmd())
	return cmd
}

func newSchemaApplyCmd() *cobra.Command {
	var to string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run schema migrations up to a revision",
		Example: `  # Apply the full schema
  agrigraph schema apply

  # Show the plan without touching the store
  agrigraph schema apply --dry-run

  # Stop after the named revision
  agrigraph schema apply --to add-name-indexes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchemaApply(cmd, to, dryRun)
		},
	}

	cmd.Flags().StringVar(&to, "to", migrate.Head, "Revision to migrate through")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the plan without executing it")
	return cmd
}

func runSchemaApply(cmd *cobra.Command, to string, dryRun bool) error {
	ctx := cmd.Context()
	styles := ui.StylesFor(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lock, err := acquireLock(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	registry, err := migrate.Registry()
	if err != nil {
		return err
	}

	runType := migrate.LiveRun
	if dryRun {
		runType = migrate.DryRun
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	started := time.Now()
	driver := migrate.NewGraphDriver(store)
	runErr := registry.Run(ctx, driver, to, runType)

	if !dryRun {
		recordRun(cfg, "schema apply", started, "to="+to, runErr)
	}
	if runErr != nil {
		return runErr
	}

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), styles.Label.Render("dry run, store untouched"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("schema at revision "+current))
	return nil
}

func newSchemaStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current and head schema revisions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			styles := ui.StylesFor(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := migrate.Registry()
			if err != nil {
				return err
			}
			head, err := registry.HeadRevision()
			if err != nil {
				return err
			}

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(ctx) }()

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if current == migrate.None {
				current = "(none)"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("current:"), current)
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("head:   "), head)
			if current == head {
				fmt.Fprintln(out, styles.Success.Render("schema is up to date"))
			} else {
				fmt.Fprintln(out, styles.Warning.Render("run 'agrigraph schema apply' to migrate"))
			}
			return nil
		},
	}
}

// acquireLock takes the schema lock under the data directory so concurrent
// applies cannot interleave.
func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, agerrors.New(agerrors.ErrCodeFileNotFound, "create data dir", err)
	}
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "schema.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, agerrors.New(agerrors.ErrCodeLockHeld, "acquire schema lock", err)
	}
	if !locked {
		return nil, agerrors.New(agerrors.ErrCodeLockHeld, "schema lock held by another process", nil).
			WithSuggestion("wait for the other agrigraph run to finish")
	}
	return lock, nil
}

// recordRun appends a run to the local ledger. Ledger failures are logged,
// never fatal; the ledger is observability, not state.
func recordRun(cfg *config.Config, command string, started time.Time, detail string, runErr error) {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return
	}
	l, err := ledger.Open(cfg.Paths.DataDir)
	if err != nil {
		return
	}
	defer l.Close()
	_ = l.Record(command, started, time.Now(), detail, runErr)
}
