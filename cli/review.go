package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enderlabs/octoeb/git"
)

func (a *App) reviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Open a pull request for a ticket branch and move the ticket to review",
	}

	cmd.AddCommand(
		a.reviewTicketCommand("feature", "Open a pull request into the integration branch", func(ctx context.Context, id string) error {
			return a.orch.ReviewFeature(ctx, id)
		}),
		a.reviewTicketCommand("hotfix", "Open a pull request into the release target branch", func(ctx context.Context, id string) error {
			return a.orch.ReviewHotfix(ctx, id)
		}),
		a.reviewTicketCommand("releasefix", "Open a pull request into the pending release branch", func(ctx context.Context, id string) error {
			return a.orch.ReviewReleasefix(ctx, id)
		}),
	)
	return cmd
}

// reviewTicketCommand builds a review subcommand. The ticket defaults to
// the one named in the current branch.
func (a *App) reviewTicketCommand(kind, short string, fn func(ctx context.Context, ticketID string) error) *cobra.Command {
	var ticketID string

	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if ticketID != "" && !git.ValidTicket(ticketID) {
				return fmt.Errorf("%q is not a ticket id (expected e.g. EB-123)", ticketID)
			}
			return fn(cmd.Context(), ticketID)
		},
	}
	cmd.Flags().StringVarP(&ticketID, "ticket", "t", "", "ticket id (default: inferred from the current branch)")
	cobra.CheckErr(cmd.RegisterFlagCompletionFunc("ticket", a.completeTicketIDs))
	return cmd
}

func (a *App) qaCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "qa",
		Short: "List the tickets from the configured tracker filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.orch.QA(cmd.Context(), verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print full ticket details")
	return cmd
}
