package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	octohttp "github.com/enderlabs/octoeb/http"
)

// GitHub implements Provider over the GitHub REST API.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHub creates a GitHub provider authenticated with a personal access
// token.
func NewGitHub(opts Options) (*GitHub, error) {
	if opts.Token == "" {
		return nil, ErrTokenRequired
	}
	if opts.Owner == "" || opts.Repo == "" {
		return nil, ErrRepoRequired
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = base
	}

	return &GitHub{
		client: client,
		owner:  opts.Owner,
		repo:   opts.Repo,
	}, nil
}

// GetBranch returns the named branch.
func (p *GitHub) GetBranch(ctx context.Context, name string) (*Branch, error) {
	branch, resp, err := p.client.Repositories.GetBranch(ctx, p.owner, p.repo, name, 1)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
		}
		return nil, p.wrapErr(resp, err, "get branch")
	}
	return &Branch{
		Name: branch.GetName(),
		SHA:  branch.GetCommit().GetSHA(),
	}, nil
}

// commitSHARe matches a full commit SHA, which needs no ref resolution.
var commitSHARe = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ResolveRef returns the commit SHA for a branch, tag, or SHA.
func (p *GitHub) ResolveRef(ctx context.Context, ref string) (string, error) {
	sha, resp, err := p.client.Repositories.GetCommitSHA1(ctx, p.owner, p.repo, ref, "")
	if err != nil {
		return "", p.wrapErr(resp, err, "resolve ref")
	}
	return sha, nil
}

// EnsureBranch creates the branch at fromRef unless it already exists.
func (p *GitHub) EnsureBranch(ctx context.Context, name, fromRef string) (*Branch, bool, error) {
	existing, err := p.GetBranch(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrBranchNotFound) {
		return nil, false, err
	}

	sha := fromRef
	if !commitSHARe.MatchString(fromRef) {
		if sha, err = p.ResolveRef(ctx, fromRef); err != nil {
			return nil, false, err
		}
	}

	ref, resp, err := p.client.Git.CreateRef(ctx, p.owner, p.repo, &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: github.String(sha)},
	})
	if err != nil {
		// Lost a race with another run; treat the existing branch as ours.
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			branch, getErr := p.GetBranch(ctx, name)
			if getErr == nil {
				return branch, false, nil
			}
		}
		return nil, false, p.wrapErr(resp, err, "create branch")
	}

	return &Branch{Name: name, SHA: ref.GetObject().GetSHA()}, true, nil
}

// ListBranches returns branches starting with prefix.
func (p *GitHub) ListBranches(ctx context.Context, prefix string) ([]Branch, error) {
	var result []Branch
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		branches, resp, err := p.client.Repositories.ListBranches(ctx, p.owner, p.repo, opts)
		if err != nil {
			return nil, p.wrapErr(resp, err, "list branches")
		}
		for _, b := range branches {
			if strings.HasPrefix(b.GetName(), prefix) {
				result = append(result, Branch{
					Name: b.GetName(),
					SHA:  b.GetCommit().GetSHA(),
				})
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// CreatePullRequest opens a pull request.
func (p *GitHub) CreatePullRequest(ctx context.Context, opts PullRequestOptions) (*PullRequest, error) {
	pr, resp, err := p.client.PullRequests.Create(ctx, p.owner, p.repo, &github.NewPullRequest{
		Title: github.String(opts.Title),
		Body:  github.String(opts.Body),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			if strings.Contains(err.Error(), "A pull request already exists") {
				return nil, fmt.Errorf("%w for %s", ErrPullRequestExists, opts.Head)
			}
			if strings.Contains(err.Error(), "No commits between") {
				return nil, fmt.Errorf("%w (%s into %s)", ErrNoChanges, opts.Head, opts.Base)
			}
		}
		return nil, p.wrapErr(resp, err, "create pull request")
	}
	return prFromGitHub(pr), nil
}

// FindPullRequest returns the open pull request from head into base, if
// any. Head may carry the "owner:branch" form; a bare branch is qualified
// with the repository owner.
func (p *GitHub) FindPullRequest(ctx context.Context, head, base string) (*PullRequest, error) {
	if !strings.Contains(head, ":") {
		head = p.owner + ":" + head
	}

	prs, resp, err := p.client.PullRequests.List(ctx, p.owner, p.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  head,
		Base:  base,
	})
	if err != nil {
		return nil, p.wrapErr(resp, err, "list pull requests")
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prFromGitHub(prs[0]), nil
}

// MergePullRequest merges an open pull request.
func (p *GitHub) MergePullRequest(ctx context.Context, number int, message string) error {
	_, resp, err := p.client.PullRequests.Merge(ctx, p.owner, p.repo, number, message,
		&github.PullRequestOptions{MergeMethod: "merge"})
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return fmt.Errorf("%w: #%d", ErrPullRequestNotFound, number)
			case http.StatusMethodNotAllowed, http.StatusConflict:
				return fmt.Errorf("%w: #%d", ErrMergeConflict, number)
			}
		}
		return p.wrapErr(resp, err, "merge pull request")
	}
	return nil
}

// EnsureRelease publishes a release on the tag unless one already exists.
func (p *GitHub) EnsureRelease(ctx context.Context, opts ReleaseOptions) (*Release, bool, error) {
	existing, resp, err := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, opts.TagName)
	if err == nil {
		if existing.GetPrerelease() && !opts.Prerelease {
			existing.Prerelease = github.Bool(false)
			if opts.Body != "" {
				existing.Body = github.String(opts.Body)
			}
			promoted, resp, err := p.client.Repositories.EditRelease(ctx, p.owner, p.repo, existing.GetID(), existing)
			if err != nil {
				return nil, false, p.wrapErr(resp, err, "promote release")
			}
			return releaseFromGitHub(promoted), false, nil
		}
		return releaseFromGitHub(existing), false, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return nil, false, p.wrapErr(resp, err, "get release")
	}

	created, resp, err := p.client.Repositories.CreateRelease(ctx, p.owner, p.repo, &github.RepositoryRelease{
		TagName:         github.String(opts.TagName),
		TargetCommitish: github.String(opts.Target),
		Name:            github.String(opts.Name),
		Body:            github.String(opts.Body),
		Prerelease:      github.Bool(opts.Prerelease),
	})
	if err != nil {
		return nil, false, p.wrapErr(resp, err, "create release")
	}
	return releaseFromGitHub(created), true, nil
}

// LatestRelease returns the newest full release.
func (p *GitHub) LatestRelease(ctx context.Context) (*Release, error) {
	return p.latestRelease(ctx, false)
}

// LatestPrerelease returns the newest pre-release.
func (p *GitHub) LatestPrerelease(ctx context.Context) (*Release, error) {
	return p.latestRelease(ctx, true)
}

func (p *GitHub) latestRelease(ctx context.Context, prerelease bool) (*Release, error) {
	opts := &github.ListOptions{PerPage: 100}
	for {
		releases, resp, err := p.client.Repositories.ListReleases(ctx, p.owner, p.repo, opts)
		if err != nil {
			return nil, p.wrapErr(resp, err, "list releases")
		}
		// Releases come back newest first.
		for _, r := range releases {
			if r.GetDraft() {
				continue
			}
			if r.GetPrerelease() == prerelease {
				return releaseFromGitHub(r), nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return nil, ErrReleaseNotFound
}

// Compare returns the commit messages on head not reachable from base.
func (p *GitHub) Compare(ctx context.Context, base, head string) ([]string, error) {
	comparison, resp, err := p.client.Repositories.CompareCommits(ctx, p.owner, p.repo, base, head,
		&github.ListOptions{PerPage: 250})
	if err != nil {
		return nil, p.wrapErr(resp, err, "compare")
	}

	messages := make([]string, 0, len(comparison.Commits))
	for _, c := range comparison.Commits {
		messages = append(messages, c.GetCommit().GetMessage())
	}
	return messages, nil
}

func (p *GitHub) wrapErr(resp *github.Response, err error, endpoint string) error {
	if resp == nil {
		return &octohttp.UnavailableError{Service: "github", Err: err}
	}
	return &octohttp.APIError{
		Service:    "github",
		StatusCode: resp.StatusCode,
		Message:    err.Error(),
		Endpoint:   endpoint,
	}
}

func prFromGitHub(pr *github.PullRequest) *PullRequest {
	return &PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
		URL:    pr.GetHTMLURL(),
	}
}

func releaseFromGitHub(r *github.RepositoryRelease) *Release {
	return &Release{
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		Body:       r.GetBody(),
		Prerelease: r.GetPrerelease(),
		URL:        r.GetHTMLURL(),
	}
}
