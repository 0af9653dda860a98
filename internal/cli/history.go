package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd(app *wire.App) *cobra.Command {
	var (
		teamArg string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a team's sync history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" {
				return fmt.Errorf("--team flag is required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			entries, total, err := app.ManifestSync.History(ctx, teamID, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}
			if total == 0 {
				fmt.Println("No sync history")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tTRIGGER\tSTATUS\tDURATION\tSUMMARY")
			fmt.Fprintln(w, "----\t-------\t------\t--------\t-------")
			for _, e := range entries {
				summary := summaryLine(e.Summary)
				if e.Status == "failed" && len(e.Errors) > 0 {
					summary = e.Errors[0]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					formatTime(e.CreatedAt), e.TriggerType, colorStatus(e.Status),
					e.Duration.Round(time.Millisecond), summary)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(entries) < total {
				fmt.Printf("\nShowing %d of %d runs\n", len(entries), total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}
