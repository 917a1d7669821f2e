package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrigpt/agrigraph/internal/ledger"
	"github.com/agrigpt/agrigraph/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent schema and seed runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			styles := ui.StylesFor(cmd.OutOrStdout())
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Paths.DataDir); os.IsNotExist(err) {
				fmt.Fprintln(out, styles.Label.Render("no runs recorded yet"))
				return nil
			}

			l, err := ledger.Open(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer l.Close()

			runs, err := l.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, styles.Label.Render("no runs recorded yet"))
				return nil
			}

			for _, r := range runs {
				mark := styles.Success.Render("ok  ")
				if r.Error != "" {
					mark = styles.Error.Render("fail")
				}
				fmt.Fprintf(out, "%s %s %-14s %s",
					mark,
					styles.Dim.Render(r.StartedAt.Local().Format(time.DateTime)),
					r.Command,
					r.Detail)
				if r.Error != "" {
					fmt.Fprintf(out, " %s", styles.Error.Render(r.Error))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	return cmd
}
