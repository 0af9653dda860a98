package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/catalogd/internal/cli"
	"github.com/example/catalogd/internal/config"
	"github.com/example/catalogd/internal/version"
	"github.com/example/catalogd/internal/wire"
)

func main() {
	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, err := wire.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	rootCmd := &cobra.Command{
		Use:     "catalogd",
		Short:   "catalogd - service catalog with manifest synchronization",
		Version: version.String(),
		Long: `catalogd keeps a team service catalog in sync with declarative manifest
files. It detects drift between manifests and the live catalog, applies
the team's sync policy, and keeps a full history of every run.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.TeamCmd(app))
	rootCmd.AddCommand(cli.UserCmd(app))
	rootCmd.AddCommand(cli.ServiceCmd(app))
	rootCmd.AddCommand(cli.ManifestCmd(app))
	rootCmd.AddCommand(cli.DriftCmd(app))
	rootCmd.AddCommand(cli.HistoryCmd(app))
	rootCmd.AddCommand(cli.WatchCmd(app))
	rootCmd.AddCommand(cli.PruneCmd(app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
