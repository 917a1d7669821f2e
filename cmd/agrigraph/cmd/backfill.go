package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/internal/ui"
)

func newBackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "One-off data backfills",
	}
	cmd.AddCommand(newBackfillSlugsCmd())
	return cmd
}

func newBackfillSlugsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slugs",
		Short: "Recompute crop slugs from names",
		Long: `Recompute the slug of every crop as the lowercased name with spaces
replaced by hyphens, preferring the English name and falling back to
the Bengali one. Crops with neither name lose their slug.

'schema apply' already runs this as its final migration; use this
command to refresh slugs after renaming crops.`,
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
			touched, err := store.BackfillCropSlugs(ctx)
			recordRun(cfg, "backfill slugs", started, fmt.Sprintf("touched=%d", touched), err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				styles.Success.Render(fmt.Sprintf("backfilled slugs on %d crops", touched)))
			return nil
		},
	}
}
