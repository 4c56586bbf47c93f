package hosting

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted in the [repo] config section.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)

// Branch is a remote branch head.
type Branch struct {
	Name string
	SHA  string
}

// PullRequest is a review request on the source host (a merge request on
// GitLab).
type PullRequest struct {
	Number int
	Title  string
	Body   string
	Head   string
	Base   string
	URL    string
}

// Release is a published release or pre-release.
type Release struct {
	TagName    string
	Name       string
	Body       string
	Prerelease bool
	URL        string
}

// PullRequestOptions describes a pull request to open.
type PullRequestOptions struct {
	Title string
	Body  string

	// Head is the source branch. For cross-repository requests on GitHub
	// it carries the "owner:branch" form.
	Head string
	Base string
}

// ReleaseOptions describes a release to publish. The tag is created on
// Target if it does not exist yet.
type ReleaseOptions struct {
	TagName    string
	Target     string
	Name       string
	Body       string
	Prerelease bool
}

// Provider abstracts the source-host API. Implementations exist for GitHub
// and GitLab; the workflow layer only sees this interface.
//
// Ensure operations are upserts: when the named object already exists they
// return it with created == false instead of failing, so re-running a
// command after a partial failure converges.
type Provider interface {
	// GetBranch returns the named branch or ErrBranchNotFound.
	GetBranch(ctx context.Context, name string) (*Branch, error)

	// ResolveRef returns the commit SHA that a branch, tag, or SHA
	// spelling of a ref points at.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// EnsureBranch creates the branch at fromRef if it does not exist.
	// FromRef may be a commit SHA, which lets a branch on a fork start
	// from a ref that only the upstream repository carries.
	EnsureBranch(ctx context.Context, name, fromRef string) (branch *Branch, created bool, err error)

	// ListBranches returns the branches whose names start with prefix.
	ListBranches(ctx context.Context, prefix string) ([]Branch, error)

	// CreatePullRequest opens a pull request. An already-open request for
	// the same head reports ErrPullRequestExists; a head with no commits
	// against the base reports ErrNoChanges.
	CreatePullRequest(ctx context.Context, opts PullRequestOptions) (*PullRequest, error)

	// FindPullRequest returns the open pull request from head into base,
	// or nil when none is open.
	FindPullRequest(ctx context.Context, head, base string) (*PullRequest, error)

	// MergePullRequest merges an open pull request by number.
	MergePullRequest(ctx context.Context, number int, message string) error

	// EnsureRelease publishes a release (tagging Target) if the tag does
	// not already carry one. An existing pre-release on the tag is
	// promoted to a full release when opts.Prerelease is false.
	EnsureRelease(ctx context.Context, opts ReleaseOptions) (release *Release, created bool, err error)

	// LatestRelease returns the most recent full release, or
	// ErrReleaseNotFound when none exists.
	LatestRelease(ctx context.Context) (*Release, error)

	// LatestPrerelease returns the most recent pre-release, or
	// ErrReleaseNotFound when none exists.
	LatestPrerelease(ctx context.Context) (*Release, error)

	// Compare returns the commit messages on head that are not on base.
	Compare(ctx context.Context, base, head string) ([]string, error)
}

// Options carries the connection settings shared by the providers.
type Options struct {
	// Token authenticates against the host API.
	Token string

	// Owner and Repo identify the repository. For GitLab, Owner/Repo form
	// the project path.
	Owner string
	Repo  string

	// BaseURL overrides the API endpoint, for self-hosted instances and
	// tests. Empty means the public host.
	BaseURL string
}

// New constructs the provider named in the config.
func New(provider string, opts Options) (Provider, error) {
	switch strings.ToLower(provider) {
	case ProviderGitHub, "":
		return NewGitHub(opts)
	case ProviderGitLab:
		return NewGitLab(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}
