package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/enderlabs/octoeb/config"
	"github.com/enderlabs/octoeb/git"
	"github.com/enderlabs/octoeb/hosting"
	"github.com/enderlabs/octoeb/jira"
	"github.com/enderlabs/octoeb/notify"
)

// Remote names the orchestrator assumes in the local working copy.
const (
	RemoteOrigin   = "origin"   // the developer's fork
	RemoteUpstream = "upstream" // the mainline repository
)

// MainlineBranch is the integration branch features are cut from and merged
// back into.
const MainlineBranch = "develop"

// ReleaseTargetBranch is the branch releases are merged into.
const ReleaseTargetBranch = "master"

// Tracker is the issue-tracker surface the orchestrator needs. *jira.Client
// satisfies it.
type Tracker interface {
	GetIssue(ctx context.Context, key string) (*jira.Issue, error)
	MyTickets(ctx context.Context) ([]jira.Issue, error)
	SearchIssues(ctx context.Context, jql string) ([]jira.Issue, error)
	CreateIssue(ctx context.Context, project, issueType, summary, description string) (*jira.Issue, error)
	LinkIssues(ctx context.Context, inwardKey, outwardKey string) error
	TransitionIssueByName(ctx context.Context, key, name string) error
}

// Repo is the local git surface the orchestrator needs. *git.Context
// satisfies it.
type Repo interface {
	CurrentBranch() (string, error)
	BranchExists(name string) bool
	Fetch(remote string) error
	PullRebase(remote, base string) error
	RebaseAbort() error
	Push(remote, branch string, force bool) error
	WithBranch(name, remote string, fn func() error) error
	MergeLog(base, head string) (string, error)
	LogMessages(base string) (string, error)
	TicketFromBranch() (string, error)
}

// Orchestrator sequences tracker, host, notification, and local git calls
// for each command. All steps run sequentially; progress is printed as each
// step completes so a failure partway leaves an accurate record of what
// already happened. Nothing is ever rolled back.
type Orchestrator struct {
	cfg       *config.Config
	tracker   Tracker
	fork      hosting.Provider
	mainline  hosting.Provider
	repo      Repo
	announcer notify.Announcer
	out       io.Writer
	logger    *slog.Logger
}

// Deps are the collaborators for an Orchestrator. Fork and Mainline are
// providers over the contributor's fork and the upstream repository; they
// may be the same when the developer pushes upstream directly. Repo may be
// nil for commands that never touch the working copy.
type Deps struct {
	Config    *config.Config
	Tracker   Tracker
	Fork      hosting.Provider
	Mainline  hosting.Provider
	Repo      Repo
	Announcer notify.Announcer
	Out       io.Writer
	Logger    *slog.Logger
}

// New creates an Orchestrator.
func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		cfg:       deps.Config,
		tracker:   deps.Tracker,
		fork:      deps.Fork,
		mainline:  deps.Mainline,
		repo:      deps.Repo,
		announcer: deps.Announcer,
		out:       deps.Out,
		logger:    deps.Logger,
	}
	if o.announcer == nil {
		o.announcer = notify.Nop{}
	}
	if o.out == nil {
		o.out = os.Stdout
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// step reports a completed step to the user.
func (o *Orchestrator) step(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// changelogOptions builds the extraction patterns from the [repo] config.
func (o *Orchestrator) changelogOptions() git.ChangelogOptions {
	return git.ChangelogOptions{
		EntryPattern:  o.cfg.Repo.ChangelogPattern,
		TicketPattern: o.cfg.Repo.TicketPattern,
	}
}

// releaseBranchName templates the release branch for a version.
func (o *Orchestrator) releaseBranchName(version string) string {
	return git.ReleaseBranch(o.cfg.Release.Prefix, o.cfg.Release.Main, version)
}

// forkHead qualifies a branch on the fork for cross-repository pull
// requests.
func (o *Orchestrator) forkHead(branch string) string {
	if o.cfg.Repo.Fork == o.cfg.Repo.Owner {
		return branch
	}
	return o.cfg.Repo.Fork + ":" + branch
}
