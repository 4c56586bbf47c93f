package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrBranchExists indicates the branch already exists.
	ErrBranchExists = errors.New("branch already exists")

	// ErrBranchNotFound indicates the branch does not exist.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrNoTicketInBranch indicates no ticket id could be parsed from the
	// current branch name.
	ErrNoTicketInBranch = errors.New("no ticket id found in current branch name")
)

// Error wraps a git command failure with context. The command output is
// preserved so the user sees what git itself reported.
type Error struct {
	Op     string // Operation that failed (e.g., "checkout", "pull")
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
