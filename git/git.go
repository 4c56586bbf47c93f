package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Context manages git operations for the local working copy.
type Context struct {
	repoPath string        // Path to the repository
	runner   CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// NewContext creates a new git context for the repository at repoPath.
// It validates that the path is a git repository and applies any options.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = absPath
	if err := cmd.Run(); err != nil {
		return nil, ErrNotGitRepo
	}

	g := &Context{
		repoPath: absPath,
		runner:   NewExecRunner(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// RepoPath returns the path to the repository.
func (g *Context) RepoPath() string {
	return g.repoPath
}

// CurrentBranch returns the current branch name.
func (g *Context) CurrentBranch() (string, error) {
	branch, err := g.runGit("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return branch, nil
}

// Checkout switches to the specified ref (branch, tag, or commit).
func (g *Context) Checkout(ref string) error {
	_, err := g.runGit("checkout", "-q", ref)
	return err
}

// Fetch fetches updates from the remote.
func (g *Context) Fetch(remote string) error {
	_, err := g.runGit("fetch", remote)
	return err
}

// Pull pulls a branch from the remote.
func (g *Context) Pull(remote, branch string) error {
	_, err := g.runGit("pull", "-q", remote, branch)
	return err
}

// PullRebase rebases the current branch on the remote copy of base.
func (g *Context) PullRebase(remote, base string) error {
	_, err := g.runGit("pull", "-r", remote, base)
	return err
}

// RebaseAbort aborts an in-progress rebase.
func (g *Context) RebaseAbort() error {
	_, err := g.runGit("rebase", "--abort")
	return err
}

// Push pushes a branch to the remote. If force is true, uses -f.
func (g *Context) Push(remote, branch string, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, remote, branch)
	_, err := g.runGit(args...)
	return err
}

// BranchExists checks if a local branch or ref exists.
func (g *Context) BranchExists(name string) bool {
	_, err := g.runGit("rev-parse", "--verify", name)
	return err == nil
}

// MergeLog returns the oneline merge-commit log between base and head.
// This is the raw input for changelog extraction.
func (g *Context) MergeLog(base, head string) (string, error) {
	log, err := g.runGit("log", "--oneline", "--merges", base+".."+head)
	if err != nil {
		return "", err
	}
	return log, nil
}

// LogMessages returns the full commit messages on the current branch since
// base, used as pull request bodies.
func (g *Context) LogMessages(base string) (string, error) {
	messages, err := g.runGit("log", "--format=%B", base+"...")
	if err != nil {
		return "", err
	}
	return messages, nil
}

// TicketFromBranch extracts a ticket id (PROJ-123) from the current branch
// name, for commands invoked without an explicit -t flag.
func (g *Context) TicketFromBranch() (string, error) {
	branch, err := g.CurrentBranch()
	if err != nil {
		return "", err
	}

	match := branchTicketRe.FindStringSubmatch(branch)
	if match == nil {
		return "", ErrNoTicketInBranch
	}
	return match[1], nil
}

var branchTicketRe = regexp.MustCompile(`(?i)^[a-z]+[-/]([a-z]+-\d+)`)

// Stash saves any uncommitted work and returns a restore function. The
// restore function must be called once the caller is done, typically via
// defer. When the tree is clean both save and restore are no-ops.
func (g *Context) Stash() (restore func(), err error) {
	ref, err := g.runGit("stash", "create")
	if err != nil {
		return nil, err
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return func() {}, nil
	}

	if _, err := g.runGit("stash", "store", "-q", ref); err != nil {
		return nil, err
	}
	if _, err := g.runGit("reset", "--hard", "-q"); err != nil {
		return nil, err
	}

	return func() {
		_, _ = g.runGit("stash", "pop", "-q")
	}, nil
}

// WithBranch stashes local work, checks out the named branch, updates it
// from the remote, runs fn, then restores the original branch and any
// stashed work. Errors from fn are returned unchanged.
func (g *Context) WithBranch(name, remote string, fn func() error) error {
	original, err := g.CurrentBranch()
	if err != nil {
		return err
	}

	restore, err := g.Stash()
	if err != nil {
		return err
	}
	defer restore()

	if err := g.Checkout(name); err != nil {
		return err
	}
	defer func() {
		_ = g.Checkout(original)
	}()

	if err := g.Pull(remote, name); err != nil {
		return err
	}

	return fn()
}

// runGit executes a git command and returns stdout.
func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, "git", args...)
}
