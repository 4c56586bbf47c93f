package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the mainline remote and rebase onto its integration branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.orch.Sync()
		},
	}
}

func (a *App) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Sync the current branch and force-push it to the fork",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.orch.Update()
		},
	}
}

func (a *App) changelogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "changelog [BASE [HEAD]]",
		Short: "Print the tickets merged between two refs",
		Long:  "Print the tickets merged between BASE and HEAD. BASE defaults to the latest release tag and HEAD to the integration branch.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			var base, head string
			if len(args) > 0 {
				base = args[0]
			}
			if len(args) > 1 {
				head = args[1]
			}
			return a.orch.Changelog(cmd.Context(), base, head)
		},
	}
}
