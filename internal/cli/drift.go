package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/ports/primary"
	"github.com/example/catalogd/internal/wire"
)

// DriftCmd returns the drift command
func DriftCmd(app *wire.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Review drift flags",
		Long:  "List, inspect and resolve drift flags raised by manifest syncs",
	}
	cmd.AddCommand(driftListCmd(app))
	cmd.AddCommand(driftShowCmd(app))
	cmd.AddCommand(driftAcceptCmd(app))
	cmd.AddCommand(driftDismissCmd(app))
	cmd.AddCommand(driftReopenCmd(app))
	return cmd
}

func driftListCmd(app *wire.App) *cobra.Command {
	var (
		teamArg   string
		status    string
		driftType string
		serviceID string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a team's drift flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if teamArg == "" {
				return fmt.Errorf("--team flag is required")
			}
			teamID, err := resolveTeamID(ctx, app, teamArg)
			if err != nil {
				return err
			}

			flags, total, err := app.Drift.ListFlags(ctx, teamID, primary.DriftFilters{
				Status:    status,
				DriftType: driftType,
				ServiceID: serviceID,
				Limit:     limit,
				Offset:    offset,
			})
			if err != nil {
				return fmt.Errorf("failed to list drift flags: %w", err)
			}
			if total == 0 {
				fmt.Println("No drift flags found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSERVICE\tTYPE\tFIELD\tSTATUS\tLAST SEEN")
			fmt.Fprintln(w, "--\t-------\t----\t-----\t------\t---------")
			for _, flag := range flags {
				field := flag.FieldName
				if field == "" {
					field = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					flag.ID, flag.ServiceManifestKey, flag.DriftType, field,
					colorStatus(flag.Status), formatTime(flag.LastDetected))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(flags) < total {
				fmt.Printf("\nShowing %d of %d flags\n", len(flags), total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&teamArg, "team", "", "Team ID or name")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, dismissed, accepted, resolved)")
	cmd.Flags().StringVar(&driftType, "type", "", "Filter by type (field_change, service_removal)")
	cmd.Flags().StringVar(&serviceID, "service", "", "Filter by service ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func driftShowCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [flag-id]",
		Short: "Show drift flag details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, err := app.Drift.GetFlag(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get drift flag: %w", err)
			}
			if flag == nil {
				fmt.Printf("Drift flag %s not found\n", args[0])
				return nil
			}

			fmt.Printf("\nDrift flag: %s\n", flag.ID)
			fmt.Printf("Service: %s (%s)\n", flag.ServiceName, flag.ServiceManifestKey)
			fmt.Printf("Type:    %s\n", flag.DriftType)
			if flag.FieldName != "" {
				fmt.Printf("Field:   %s\n", flag.FieldName)
				fmt.Printf("  manifest: %s\n", flag.ManifestValue)
				fmt.Printf("  current:  %s\n", flag.CurrentValue)
			}
			fmt.Printf("Status:  %s\n", colorStatus(flag.Status))
			fmt.Printf("First detected: %s\n", formatTime(flag.FirstDetected))
			fmt.Printf("Last detected:  %s\n", formatTime(flag.LastDetected))
			if flag.ResolvedAt != nil {
				by := flag.ResolvedByName
				if by == "" {
					by = flag.ResolvedBy
				}
				if by == "" {
					by = "system"
				}
				fmt.Printf("Resolved: %s by %s\n", formatTime(*flag.ResolvedAt), by)
			}
			fmt.Println()
			return nil
		},
	}
}

func driftAcceptCmd(app *wire.App) *cobra.Command {
	var byArg string

	cmd := &cobra.Command{
		Use:   "accept [flag-id...]",
		Short: "Accept drift (the live value stands)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if len(args) == 1 {
				ok, err := app.Drift.Accept(ctx, args[0], byArg)
				if err != nil {
					return fmt.Errorf("failed to accept drift flag: %w", err)
				}
				if !ok {
					fmt.Printf("Flag %s not found or already resolved\n", args[0])
					return nil
				}
				fmt.Printf("✓ Accepted drift flag %s\n", args[0])
				return nil
			}

			n, err := app.Drift.BulkAccept(ctx, args, byArg)
			if err != nil {
				return fmt.Errorf("failed to accept drift flags: %w", err)
			}
			fmt.Printf("✓ Accepted %d of %d drift flags\n", n, len(args))
			return nil
		},
	}
	cmd.Flags().StringVar(&byArg, "by", "", "User ID resolving the flag")
	return cmd
}

func driftDismissCmd(app *wire.App) *cobra.Command {
	var byArg string

	cmd := &cobra.Command{
		Use:   "dismiss [flag-id...]",
		Short: "Dismiss drift (known divergence, stop asking)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if len(args) == 1 {
				ok, err := app.Drift.Dismiss(ctx, args[0], byArg)
				if err != nil {
					return fmt.Errorf("failed to dismiss drift flag: %w", err)
				}
				if !ok {
					fmt.Printf("Flag %s not found or not pending\n", args[0])
					return nil
				}
				fmt.Printf("✓ Dismissed drift flag %s\n", args[0])
				return nil
			}

			n, err := app.Drift.BulkDismiss(ctx, args, byArg)
			if err != nil {
				return fmt.Errorf("failed to dismiss drift flags: %w", err)
			}
			fmt.Printf("✓ Dismissed %d of %d drift flags\n", n, len(args))
			return nil
		},
	}
	cmd.Flags().StringVar(&byArg, "by", "", "User ID resolving the flag")
	return cmd
}

func driftReopenCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen [flag-id]",
		Short: "Reopen a dismissed drift flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := app.Drift.Reopen(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to reopen drift flag: %w", err)
			}
			if !ok {
				fmt.Printf("Flag %s not found or not dismissed\n", args[0])
				return nil
			}
			fmt.Printf("✓ Reopened drift flag %s\n", args[0])
			return nil
		},
	}
}
