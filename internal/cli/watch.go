package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/wire"
)

// WatchCmd returns the watch command
func WatchCmd(app *wire.App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the background sync scheduler",
		Long: `Periodically sync every team with an enabled manifest config, and
sync immediately when a file-based manifest changes on disk.
Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sched := app.NewScheduler()
			if interval > 0 {
				sched = app.NewSchedulerWithInterval(interval)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			fmt.Println("Scheduler running; press Ctrl-C to stop")

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			fmt.Println("\nStopping...")
			sched.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Override the configured sync interval (e.g. 30s, 5m)")
	return cmd
}
