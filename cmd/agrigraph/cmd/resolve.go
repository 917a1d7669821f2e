package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/internal/graph"
	"github.com/agrigpt/agrigraph/internal/resolve"
	"github.com/agrigpt/agrigraph/internal/ui"
)

func newResolveCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a crop name in Bengali or English",
		Example: `  agrigraph resolve "বোরো ধান"
  agrigraph resolve boro-rice --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			resolver, err := resolve.New(store, slog.Default())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			crop, err := resolver.Crop(ctx, query)
			if errors.Is(err, graph.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), styles.Warning.Render("no crop matched "+query))
				return err
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(crop)
			}
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("id:     "), crop.ID)
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("name_bn:"), crop.NameBN)
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("name_en:"), crop.NameEN)
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("slug:   "), crop.Slug)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the crop as JSON")
	return cmd
}
