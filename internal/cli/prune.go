package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/wire"
)

// PruneCmd returns the prune command
func PruneCmd(app *wire.App) *cobra.Command {
	var (
		historyDays int
		driftDays   int
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old sync history and resolved drift flags",
		Long: `Delete sync history entries and resolved drift flags older than their
retention windows. Pending and dismissed drift flags are never pruned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			historyWindow := app.Config.HistoryRetention()
			if historyDays > 0 {
				historyWindow = time.Duration(historyDays) * 24 * time.Hour
			}
			driftWindow := app.Config.DriftRetention()
			if driftDays > 0 {
				driftWindow = time.Duration(driftDays) * 24 * time.Hour
			}

			nHistory, err := app.ManifestSync.PruneHistory(ctx, historyWindow)
			if err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
			nDrift, err := app.Drift.PruneResolved(ctx, driftWindow)
			if err != nil {
				return fmt.Errorf("failed to prune drift flags: %w", err)
			}

			fmt.Printf("✓ Pruned %d history entries and %d resolved drift flags\n", nHistory, nDrift)
			return nil
		},
	}
	cmd.Flags().IntVar(&historyDays, "history-days", 0, "History retention in days (default from config)")
	cmd.Flags().IntVar(&driftDays, "drift-days", 0, "Resolved drift retention in days (default from config)")
	return cmd
}
