package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Resinat/launchview/internal/buildinfo"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "launchview",
		Short:         "Local daemon serving SpaceX launch data over a JSON API",
		Long:          "launchview keeps the launch list, favorites, profile and connectivity state for one user and exposes them over an authenticated JSON API with a server-sent event stream.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	cmd.Version = buildinfo.Version
	cmd.SetVersionTemplate("launchview version {{.Version}} (" + buildinfo.GitCommit + ")\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.AddCommand(
		newServeCmd(),
		newCacheCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}
