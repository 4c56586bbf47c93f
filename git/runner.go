package git

import (
	"os/exec"
	"strings"
)

// CommandRunner executes external commands. The exec-backed implementation
// is used in production; tests inject a mock.
type CommandRunner interface {
	// Run executes the command in dir and returns trimmed stdout.
	Run(dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates an exec-backed command runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(output)), &Error{
			Op:     name + " " + strings.Join(args, " "),
			Output: strings.TrimSpace(string(output)),
			Err:    err,
		}
	}
	return strings.TrimSpace(string(output)), nil
}
