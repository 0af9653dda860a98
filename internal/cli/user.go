package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/wire"
)

// UserCmd returns the user command
func UserCmd(app *wire.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCmd(app))
	cmd.AddCommand(userListCmd(app))
	return cmd
}

func userCreateCmd(app *wire.App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create [display-name]",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Catalog.CreateUser(context.Background(), args[0], email)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Printf("✓ Created user %s: %s\n", user.ID, user.DisplayName)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func userListCmd(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Catalog.ListUsers(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Println("No users found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			fmt.Fprintln(w, "--\t----\t-----")
			for _, user := range users {
				email := user.Email
				if email == "" {
					email = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", user.ID, user.DisplayName, email)
			}
			return w.Flush()
		},
	}
}
