package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enderlabs/octoeb/hosting"
)

// methodCommand is the raw escape hatch onto the source-host API, targeting
// either the mainline repository or the fork.
func (a *App) methodCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "method NAME [ARG...]",
		Short: "Call a source-host API method directly",
		Long:  "Call a source-host API method directly and print the JSON response.\n\nMethods:\n  " + strings.Join(hosting.Methods(), "\n  "),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}

			provider := a.mainline
			if target == "fork" {
				provider = a.fork
			}

			out, err := hosting.Invoke(cmd.Context(), provider, args[0], args[1:]...)
			if err != nil {
				if errors.Is(err, hosting.ErrMethodUnknown) {
					return fmt.Errorf("%w\n\nmethods:\n  %s", err, strings.Join(hosting.Methods(), "\n  "))
				}
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "mainline", "repository to target (mainline or fork)")
	return cmd
}
