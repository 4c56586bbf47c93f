package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enderlabs/octoeb/jira"
)

// jiraCommand is the raw escape hatch onto the tracker API: it invokes a
// named client method with positional arguments and prints the JSON result.
func (a *App) jiraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jira METHOD [ARG...]",
		Short: "Call a tracker API method directly",
		Long:  "Call a tracker API method directly and print the JSON response.\n\nMethods:\n  " + strings.Join(jira.Methods(), "\n  "),
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, len(jira.Methods()))
			for _, usage := range jira.Methods() {
				names = append(names, strings.Fields(usage)[0])
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			out, err := a.tracker.Invoke(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				if errors.Is(err, jira.ErrMethodUnknown) {
					return fmt.Errorf("%w\n\nmethods:\n  %s", err, strings.Join(jira.Methods(), "\n  "))
				}
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
}
