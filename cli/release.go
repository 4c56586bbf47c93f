package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) releaseCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "release [VERSION]",
		Short: "Merge the pending release branch, publish the release, and close its ticket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			var version string
			if len(args) == 1 {
				version = args[0]
			}
			return a.orch.Release(cmd.Context(), version, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the release changelog")
	return cmd
}

func (a *App) versionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Show the latest release and pre-release tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.orch.Versions(cmd.Context())
		},
	}
}
