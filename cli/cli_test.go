package cli

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/enderlabs/octoeb/config"
	octoerrors "github.com/enderlabs/octoeb/errors"
	octohttp "github.com/enderlabs/octoeb/http"
	"github.com/enderlabs/octoeb/workflow"
)

func newTestRoot() (*App, *cobraRunner) {
	app := &App{out: io.Discard}
	root := app.rootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return app, &cobraRunner{root: root}
}

type cobraRunner struct {
	root *cobra.Command
}

func (r *cobraRunner) run(args ...string) error {
	r.root.SetArgs(args)
	return r.root.Execute()
}

func TestCommandTree(t *testing.T) {
	_, runner := newTestRoot()

	// Unknown commands fail; known ones at least reach argument parsing.
	if err := runner.run("frobnicate"); err == nil {
		t.Error("unknown command accepted")
	}

	// Ticket-driven subcommands refuse to run without a ticket.
	for _, args := range [][]string{
		{"start", "feature"},
		{"start", "hotfix"},
		{"start", "releasefix"},
	} {
		err := runner.run(args...)
		if err == nil || !strings.Contains(err.Error(), "ticket id") {
			t.Errorf("%v: err = %v, want missing-ticket error", args, err)
		}
	}

	if err := runner.run("jira"); err == nil || !strings.Contains(err.Error(), "arg") {
		t.Errorf("jira: err = %v, want missing-argument error", err)
	}
}

func TestStartRejectsMalformedTicketID(t *testing.T) {
	_, runner := newTestRoot()

	err := runner.run("start", "feature", "not_a_ticket")
	if err == nil || !strings.Contains(err.Error(), "ticket id") {
		t.Errorf("err = %v, want ticket id validation error", err)
	}
}

func TestStartTicketFlag(t *testing.T) {
	_, runner := newTestRoot()

	// The -t form is validated the same as the positional form.
	err := runner.run("start", "hotfix", "-t", "not_a_ticket")
	if err == nil || !strings.Contains(err.Error(), "ticket id") {
		t.Errorf("err = %v, want ticket id validation error", err)
	}
}

func TestReviewRejectsMalformedTicketFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, runner := newTestRoot()
	err := runner.run("review", "feature", "-t", "nope")

	// Config loading may fail first in a bare environment; either way the
	// command must not succeed with a malformed ticket.
	if err == nil {
		t.Fatal("malformed ticket flag accepted")
	}
}

func TestDecorateConfigNotFound(t *testing.T) {
	err := decorate(config.ErrNotFound)

	var cliErr *octoerrors.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("decorate() = %T, want *CLIError", err)
	}
	if !strings.Contains(cliErr.Suggestion, ".octoebrc") {
		t.Errorf("suggestion = %q", cliErr.Suggestion)
	}
	if !errors.Is(err, config.ErrNotFound) {
		t.Error("decorated error lost its cause")
	}
}

func TestDecorateServerError(t *testing.T) {
	cause := &octohttp.APIError{Service: "github", StatusCode: 502, Message: "bad gateway"}
	err := decorate(cause)

	var cliErr *octoerrors.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("decorate() = %T, want *CLIError", err)
	}
	if !strings.Contains(cliErr.Suggestion, "re-run") && !strings.Contains(cliErr.Suggestion, "Re-run") {
		t.Errorf("suggestion = %q, want re-run hint", cliErr.Suggestion)
	}
}

func TestDecorateTypeMismatch(t *testing.T) {
	cause := &workflow.TicketTypeMismatchError{Key: "EB-1", Type: "Bug", Want: "feature"}
	err := decorate(cause)

	var cliErr *octoerrors.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("decorate() = %T, want *CLIError", err)
	}
	if !strings.Contains(cliErr.Message, "EB-1") {
		t.Errorf("message = %q", cliErr.Message)
	}
}

func TestDecoratePassesThroughDecorated(t *testing.T) {
	already := octoerrors.New("done", "nothing to do")
	if got := decorate(already); got != already {
		t.Errorf("decorate() rewrapped an existing CLIError: %v", got)
	}

	plain := errors.New("something else")
	if got := decorate(plain); got != plain {
		t.Errorf("decorate() = %v, want the error unchanged", got)
	}
}
