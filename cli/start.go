package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enderlabs/octoeb/git"
)

func (a *App) startCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Cut a gitflow branch and move its ticket forward",
	}

	cmd.AddCommand(
		a.startTicketCommand("feature", "Cut a feature branch from the integration branch", func(ctx context.Context, id string) error {
			return a.orch.StartFeature(ctx, id)
		}),
		a.startTicketCommand("hotfix", "Cut a hotfix branch from the latest release tag", func(ctx context.Context, id string) error {
			return a.orch.StartHotfix(ctx, id)
		}),
		a.startTicketCommand("releasefix", "Cut a fix branch from the pending pre-release tag", func(ctx context.Context, id string) error {
			return a.orch.StartReleasefix(ctx, id)
		}),
		a.startReleaseCommand(),
	)
	return cmd
}

// startTicketCommand builds one of the ticket-driven start subcommands. The
// ticket can be given with -t or as a positional argument.
func (a *App) startTicketCommand(kind, short string, fn func(ctx context.Context, ticketID string) error) *cobra.Command {
	var ticketID string

	cmd := &cobra.Command{
		Use:               kind + " [TICKET-ID]",
		Short:             short,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeTicketIDs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				ticketID = args[0]
			}
			if ticketID == "" {
				return fmt.Errorf("a ticket id is required (pass it as an argument or with -t)")
			}
			if !git.ValidTicket(ticketID) {
				return fmt.Errorf("%q is not a ticket id (expected e.g. EB-123)", ticketID)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return fn(cmd.Context(), ticketID)
		},
	}
	cmd.Flags().StringVarP(&ticketID, "ticket", "t", "", "ticket id")
	cobra.CheckErr(cmd.RegisterFlagCompletionFunc("ticket", a.completeTicketIDs))
	return cmd
}

func (a *App) startReleaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release [VERSION]",
		Short: "Cut the release branch, tag a pre-release, and file the release ticket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			var version string
			if len(args) == 1 {
				version = args[0]
			}
			return a.orch.StartRelease(cmd.Context(), version)
		},
	}
}
