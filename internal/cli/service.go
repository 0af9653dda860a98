package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/wire"
)

// ServiceCmd returns the service command
func ServiceCmd(app *wire.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Inspect catalog services",
	}
	cmd.AddCommand(serviceListCmd(app))
	cmd.AddCommand(serviceShowCmd(app))
	cmd.AddCommand(serviceDeleteCmd(app))
	return cmd
}

func serviceListCmd(app *wire.App) *cobra.Command {
	var teamArg string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a team's services",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" {
				return fmt.Errorf("--team flag is required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			services, err := app.Catalog.ListServices(ctx, teamID)
			if err != nil {
				return fmt.Errorf("failed to list services: %w", err)
			}
			if len(services) == 0 {
				fmt.Println("No services found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tMANAGED\tKEY\tENDPOINT")
			fmt.Fprintln(w, "--\t----\t------\t-------\t---\t--------")
			for _, svc := range services {
				managed := "-"
				if svc.ManifestManaged {
					managed = "yes"
				}
				key := svc.ManifestKey
				if key == "" {
					key = "-"
				}
				endpoint := svc.Endpoint
				if endpoint == "" {
					endpoint = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					svc.ID, svc.Name, colorStatus(svc.Status), managed, key, endpoint)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	return cmd
}

func serviceShowCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [service-id]",
		Short: "Show service details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Catalog.GetService(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get service: %w", err)
			}

			fmt.Printf("\nService: %s\n", svc.Name)
			fmt.Printf("ID:      %s\n", svc.ID)
			fmt.Printf("Team:    %s\n", svc.TeamID)
			fmt.Printf("Status:  %s\n", colorStatus(svc.Status))
			if svc.Endpoint != "" {
				fmt.Printf("Endpoint: %s\n", svc.Endpoint)
			}
			if svc.HealthEndpoint != "" {
				fmt.Printf("Health:   %s\n", svc.HealthEndpoint)
			}
			fmt.Printf("Poll interval: %ds\n", svc.PollIntervalSeconds)
			if svc.ManifestManaged {
				fmt.Printf("Manifest key: %s\n", svc.ManifestKey)
				if svc.LastSyncedValues != nil {
					fmt.Printf("Last synced: name=%q endpoint=%q health=%q interval=%d\n",
						svc.LastSyncedValues.Name, svc.LastSyncedValues.Endpoint,
						svc.LastSyncedValues.HealthEndpoint, svc.LastSyncedValues.PollIntervalSeconds)
				}
			}
			fmt.Printf("Created: %s\n", formatTime(svc.CreatedAt))
			fmt.Println()
			return nil
		},
	}
}

func serviceDeleteCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [service-id]",
		Short: "Delete a service (closes its drift flags)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := app.Catalog.DeleteService(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete service: %w", err)
			}
			if !deleted {
				fmt.Printf("Service %s not found\n", args[0])
				return nil
			}
			fmt.Printf("✓ Deleted service %s\n", args[0])
			return nil
		},
	}
}
