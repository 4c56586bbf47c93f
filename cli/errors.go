package cli

import (
	"errors"

	"github.com/enderlabs/octoeb/config"
	octoerrors "github.com/enderlabs/octoeb/errors"
	"github.com/enderlabs/octoeb/git"
	octohttp "github.com/enderlabs/octoeb/http"
	"github.com/enderlabs/octoeb/workflow"
)

// decorate attaches a user-facing suggestion to known failure modes. Errors
// already carrying one pass through untouched.
func decorate(err error) error {
	var cliErr *octoerrors.CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, config.ErrNotFound):
		return octoerrors.Wrap(err, "no configuration found",
			"Create a .octoebrc in the repository, your config directory, or your home directory.")

	case errors.Is(err, git.ErrNotGitRepo):
		return octoerrors.Wrap(err, "not inside a git repository",
			"Run this command from a clone of the project repository.")

	case errors.Is(err, workflow.ErrNoReleases):
		return octoerrors.Wrap(err, "no release found to work from",
			"Pass an explicit version, e.g. `octoeb start release 2026.32.0.01`.")

	case errors.Is(err, workflow.ErrTicketRequired):
		return octoerrors.Wrap(err, "could not determine the ticket",
			"Pass the ticket with -t, or check out the branch for the ticket first.")

	case errors.Is(err, octohttp.ErrUnauthorized), octoerrors.IsAuthError(err):
		return octoerrors.Wrap(err, "authentication failed",
			"Check the tokens in your .octoebrc; they may have expired.")

	case errors.Is(err, octohttp.ErrUnavailable), octoerrors.IsConnectionError(err):
		return octoerrors.Wrap(err, "a remote service could not be reached",
			"Check your network connection and the configured base URLs, then re-run the command.")

	case errors.Is(err, octohttp.ErrServerError):
		return octoerrors.Wrap(err, "a remote service failed",
			"Nothing was rolled back; re-run the command once the service recovers to finish the remaining steps.")
	}

	var mismatch *workflow.TicketTypeMismatchError
	if errors.As(err, &mismatch) {
		return octoerrors.Wrap(err, mismatch.Error(),
			"Use the start subcommand matching the ticket type, or fix the type in the tracker.")
	}

	var apiErr *octohttp.APIError
	if errors.As(err, &apiErr) {
		return octoerrors.WrapDetails(err, "a remote API call failed", apiErr.Error(),
			"Re-run the command to retry; completed steps are skipped.")
	}

	return err
}
