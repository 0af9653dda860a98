package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/ports/secondary"
	"github.com/example/catalogd/internal/wire"
)

// ManifestCmd returns the manifest command
func ManifestCmd(app *wire.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Manage manifest sync for teams",
		Long:  "Configure, test and run manifest synchronization against the service catalog",
	}
	cmd.AddCommand(manifestSetCmd(app))
	cmd.AddCommand(manifestShowCmd(app))
	cmd.AddCommand(manifestRemoveCmd(app))
	cmd.AddCommand(manifestTestCmd(app))
	cmd.AddCommand(manifestSyncCmd(app))
	return cmd
}

func manifestSetCmd(app *wire.App) *cobra.Command {
	var (
		teamArg   string
		url       string
		onDrift   string
		onRemoval string
		disabled  bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a team's manifest config",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" || url == "" {
				return fmt.Errorf("--team and --url flags are required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			cfg, err := app.ManifestSync.SetConfig(ctx, primary.SetConfigRequest{
				TeamID:      teamID,
				ManifestURL: url,
				Enabled:     !disabled,
				Policy: models.SyncPolicy{
					OnFieldDrift: onDrift,
					OnRemoval:    onRemoval,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to set manifest config: %w", err)
			}

			fmt.Printf("✓ Manifest configured for team %s\n", teamID)
			fmt.Printf("  URL: %s\n", cfg.ManifestURL)
			fmt.Printf("  Enabled: %v\n", cfg.Enabled)
			fmt.Printf("  Policy: drift=%s removal=%s\n", cfg.Policy.OnFieldDrift, cfg.Policy.OnRemoval)
			return nil
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	cmd.Flags().StringVar(&url, "url", "", "Manifest URL (https:// or file://)")
	cmd.Flags().StringVar(&onDrift, "on-drift", models.FieldPolicyFlag, "Field drift policy: flag, manifest_wins, local_wins")
	cmd.Flags().StringVar(&onRemoval, "on-removal", models.RemovalPolicyFlag, "Removal policy: flag, deactivate, delete")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the config disabled")
	return cmd
}

func manifestShowCmd(app *wire.App) *cobra.Command {
	var teamArg string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a team's manifest config",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" {
				return fmt.Errorf("--team flag is required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			cfg, err := app.ManifestSync.GetConfig(ctx, teamID)
			if err != nil {
				return fmt.Errorf("failed to get manifest config: %w", err)
			}
			if cfg == nil {
				fmt.Println("No manifest configured for this team")
				return nil
			}

			fmt.Printf("\nManifest config for team %s\n", cfg.TeamID)
			fmt.Printf("URL:     %s\n", cfg.ManifestURL)
			fmt.Printf("Enabled: %v\n", cfg.Enabled)
			fmt.Printf("Policy:  drift=%s removal=%s\n", cfg.Policy.OnFieldDrift, cfg.Policy.OnRemoval)
			if cfg.LastSyncAt != nil {
				fmt.Printf("Last sync: %s [%s]\n", formatTime(*cfg.LastSyncAt), colorStatus(cfg.LastSyncStatus))
				if cfg.LastSyncError != "" {
					fmt.Printf("  Error: %s\n", cfg.LastSyncError)
				}
				if cfg.LastSyncSummary != nil {
					fmt.Printf("  Summary: %s\n", summaryLine(cfg.LastSyncSummary))
				}
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	return cmd
}

func manifestRemoveCmd(app *wire.App) *cobra.Command {
	var teamArg string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a team's manifest config (closes its drift flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" {
				return fmt.Errorf("--team flag is required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			removed, err := app.ManifestSync.RemoveConfig(ctx, teamID)
			if err != nil {
				return fmt.Errorf("failed to remove manifest config: %w", err)
			}
			if !removed {
				fmt.Println("No manifest configured for this team")
				return nil
			}
			fmt.Printf("✓ Removed manifest config for team %s\n", teamID)
			fmt.Println("  Synced services were kept; open drift flags were closed.")
			return nil
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	return cmd
}

func manifestTestCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "test [url]",
		Short: "Fetch and validate a manifest without syncing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.ManifestSync.TestManifest(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			printValidation(result)
			if !result.Valid {
				return fmt.Errorf("manifest is invalid")
			}
			return nil
		},
	}
}

func printValidation(result *secondary.ValidationResult) {
	if result.Valid {
		fmt.Printf("%s manifest is valid (%d services)\n",
			color.New(color.FgGreen).Sprint("✓"), result.ServiceCount)
	} else {
		fmt.Printf("%s manifest is invalid\n", color.New(color.FgRed).Sprint("✗"))
	}
	for _, issue := range result.Errors {
		fmt.Printf("  %s %s: %s\n", color.New(color.FgRed).Sprint("error"), issue.Path, issue.Message)
	}
	for _, issue := range result.Warnings {
		fmt.Printf("  %s %s: %s\n", color.New(color.FgYellow).Sprint("warning"), issue.Path, issue.Message)
	}
}

func manifestSyncCmd(app *wire.App) *cobra.Command {
	var (
		teamArg string
		byArg   string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one manifest sync for a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" {
				return fmt.Errorf("--team flag is required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			result, err := app.ManifestSync.Sync(ctx, primary.SyncRequest{
				TeamID:      teamID,
				Trigger:     models.TriggerManual,
				TriggeredBy: byArg,
			})
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Printf("Sync %s [%s] in %s\n", result.HistoryID, colorStatus(result.Status), result.Duration.Round(time.Millisecond))
			fmt.Printf("  %s\n", summaryLine(&result.Summary))
			for _, change := range result.Summary.Changes {
				line := fmt.Sprintf("  - %s: %s", change.ManifestKey, change.Action)
				if len(change.FieldsChanged) > 0 {
					line += fmt.Sprintf(" (fields: %v)", change.FieldsChanged)
				}
				if len(change.DriftFields) > 0 {
					line += color.New(color.FgYellow).Sprintf(" (drift: %v)", change.DriftFields)
				}
				fmt.Println(line)
			}
			for _, msg := range result.Errors {
				fmt.Printf("  %s %s\n", color.New(color.FgRed).Sprint("error"), msg)
			}
			for _, msg := range result.Warnings {
				fmt.Printf("  %s %s\n", color.New(color.FgYellow).Sprint("warning"), msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	cmd.Flags().StringVar(&byArg, "by", "", "User ID triggering the sync")
	return cmd
}
