package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/internal/seed"
	"github.com/agrigpt/agrigraph/internal/ui"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Split, load, and alias the reference data",
		Long: `Seed the graph from the master agricultural reference sheet in three
steps:

  split    master CSV -> per-label node and relationship CSVs
  load     CSVs -> graph nodes and relationships (MERGE, idempotent)
  aliases  derive Bengali aliases for loaded crops`,
	}

	cmd.AddCommand(newSeedSplitCmd())
	cmd.AddCommand(newSeedLoadCmd())
	cmd.AddCommand(newSeedAliasesCmd())
	return cmd
}

func newSeedSplitCmd() *cobra.Command {
	var master string

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the master CSV into node and relationship CSVs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			styles := ui.StylesFor(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if master == "" {
				master = cfg.Paths.MasterCSV
			}

			started := time.Now()
			sum, err := seed.Split(master, cfg.Paths.CSVDir)
			recordRun(cfg, "seed split", started, sum.String(), err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("split complete: "+sum.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&master, "master", "", "Master CSV path (defaults to paths.master_csv)")
	return cmd
}

func newSeedLoadCmd() *cobra.Command {
	var csvDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load node and relationship CSVs into the graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			styles := ui.StylesFor(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if csvDir == "" {
				csvDir = cfg.Paths.CSVDir
			}
			if workers == 0 {
				workers = cfg.Seed.Workers
			}

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(ctx) }()

			started := time.Now()
			sum, err := seed.Load(ctx, store, csvDir, workers, slog.Default())
			recordRun(cfg, "seed load", started, sum.String(), err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("load complete: "+sum.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "Directory of split CSVs (defaults to paths.csv_dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent CSV parsers (defaults to seed.workers)")
	return cmd
}

func newSeedAliasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aliases",
		Short: "Derive Bengali aliases for loaded crops",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			styles := ui.StylesFor(cmd.OutOrStdout())

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(ctx) }()

			started := time.Now()
			n, err := seed.SeedAliases(ctx, store)
			recordRun(cfg, "seed aliases", started, fmt.Sprintf("aliases=%d", n), err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				styles.Success.Render(fmt.Sprintf("wrote %d alias links", n)))
			return nil
		},
	}
}
