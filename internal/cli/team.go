package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/wire"
)

// TeamCmd returns the team command
func TeamCmd(app *wire.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage teams",
	}
	cmd.AddCommand(teamCreateCmd(app))
	cmd.AddCommand(teamListCmd(app))
	cmd.AddCommand(teamShowCmd(app))
	return cmd
}

func teamCreateCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := app.Catalog.CreateTeam(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create team: %w", err)
			}
			fmt.Printf("✓ Created team %s: %s\n", team.ID, team.Name)
			return nil
		},
	}
}

func teamListCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			teams, err := app.Catalog.ListTeams(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list teams: %w", err)
			}
			if len(teams) == 0 {
				fmt.Println("No teams found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED")
			fmt.Fprintln(w, "--\t----\t-------")
			for _, team := range teams {
				fmt.Fprintf(w, "%s\t%s\t%s\n", team.ID, team.Name, formatDate(team.CreatedAt))
			}
			return w.Flush()
		},
	}
}

func teamShowCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [team]",
		Short: "Show team details, services and manifest state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			team, err := app.Catalog.GetTeam(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get team: %w", err)
			}

			fmt.Printf("\nTeam: %s\n", team.Name)
			fmt.Printf("ID:   %s\n", team.ID)
			fmt.Printf("Created: %s\n", formatTime(team.CreatedAt))
			fmt.Println()

			cfg, err := app.ManifestSync.GetConfig(ctx, team.ID)
			if err != nil {
				return fmt.Errorf("failed to get manifest config: %w", err)
			}
			if cfg != nil {
				fmt.Printf("Manifest: %s (enabled: %v)\n", cfg.ManifestURL, cfg.Enabled)
				fmt.Printf("Policy:   drift=%s removal=%s\n", cfg.Policy.OnFieldDrift, cfg.Policy.OnRemoval)
				if cfg.LastSyncAt != nil {
					fmt.Printf("Last sync: %s [%s] %s\n",
						formatTime(*cfg.LastSyncAt), colorStatus(cfg.LastSyncStatus), summaryLine(cfg.LastSyncSummary))
				}
				fmt.Println()
			}

			counts, err := app.Drift.CountFlags(ctx, team.ID)
			if err == nil && (counts.Pending > 0 || counts.Dismissed > 0) {
				fmt.Printf("Drift: %d pending, %d dismissed\n\n", counts.Pending, counts.Dismissed)
			}

			services, err := app.Catalog.ListServices(ctx, team.ID)
			if err != nil {
				return fmt.Errorf("failed to list services: %w", err)
			}
			if len(services) == 0 {
				fmt.Println("No services")
				return nil
			}

			fmt.Println("Services:")
			for _, svc := range services {
				managed := ""
				if svc.ManifestManaged {
					managed = fmt.Sprintf(" (manifest: %s)", svc.ManifestKey)
				}
				fmt.Printf("  - %s [%s] %s%s\n", svc.ID, colorStatus(svc.Status), svc.Name, managed)
			}
			fmt.Println()
			return nil
		},
	}
}
