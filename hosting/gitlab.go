package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xanzy/go-gitlab"

	octohttp "github.com/enderlabs/octoeb/http"
)

// GitLab implements Provider over the GitLab API. Pull requests map to
// merge requests and pre-releases to upcoming releases.
type GitLab struct {
	client    *gitlab.Client
	projectID string
}

// NewGitLab creates a GitLab provider authenticated with a personal access
// token.
func NewGitLab(opts Options) (*GitLab, error) {
	if opts.Token == "" {
		return nil, ErrTokenRequired
	}
	if opts.Owner == "" || opts.Repo == "" {
		return nil, ErrRepoRequired
	}

	var (
		client *gitlab.Client
		err    error
	)
	if opts.BaseURL != "" {
		client, err = gitlab.NewClient(opts.Token, gitlab.WithBaseURL(opts.BaseURL))
	} else {
		client, err = gitlab.NewClient(opts.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}

	return &GitLab{
		client:    client,
		projectID: opts.Owner + "/" + opts.Repo,
	}, nil
}

// GetBranch returns the named branch.
func (p *GitLab) GetBranch(ctx context.Context, name string) (*Branch, error) {
	branch, resp, err := p.client.Branches.GetBranch(p.projectID, name, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
		}
		return nil, p.wrapErr(resp, err, "get branch")
	}
	return &Branch{Name: branch.Name, SHA: branch.Commit.ID}, nil
}

// ResolveRef returns the commit SHA for a branch, tag, or SHA.
func (p *GitLab) ResolveRef(ctx context.Context, ref string) (string, error) {
	commit, resp, err := p.client.Commits.GetCommit(p.projectID, ref, nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", p.wrapErr(resp, err, "resolve ref")
	}
	return commit.ID, nil
}

// EnsureBranch creates the branch at fromRef unless it already exists.
// The branches API accepts a SHA as the base ref directly.
func (p *GitLab) EnsureBranch(ctx context.Context, name, fromRef string) (*Branch, bool, error) {
	existing, err := p.GetBranch(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrBranchNotFound) {
		return nil, false, err
	}

	branch, resp, err := p.client.Branches.CreateBranch(p.projectID, &gitlab.CreateBranchOptions{
		Branch: gitlab.Ptr(name),
		Ref:    gitlab.Ptr(fromRef),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusBadRequest {
			existing, getErr := p.GetBranch(ctx, name)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, p.wrapErr(resp, err, "create branch")
	}
	return &Branch{Name: branch.Name, SHA: branch.Commit.ID}, true, nil
}

// ListBranches returns branches starting with prefix.
func (p *GitLab) ListBranches(ctx context.Context, prefix string) ([]Branch, error) {
	var result []Branch
	opts := &gitlab.ListBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		Search:      gitlab.Ptr(prefix),
	}

	for {
		branches, resp, err := p.client.Branches.ListBranches(p.projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, p.wrapErr(resp, err, "list branches")
		}
		// Search matches substrings; keep prefix matches only.
		for _, b := range branches {
			if strings.HasPrefix(b.Name, prefix) {
				result = append(result, Branch{Name: b.Name, SHA: b.Commit.ID})
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// CreatePullRequest opens a merge request.
func (p *GitLab) CreatePullRequest(ctx context.Context, opts PullRequestOptions) (*PullRequest, error) {
	mr, resp, err := p.client.MergeRequests.CreateMergeRequest(p.projectID, &gitlab.CreateMergeRequestOptions{
		Title:        gitlab.Ptr(opts.Title),
		Description:  gitlab.Ptr(opts.Body),
		SourceBranch: gitlab.Ptr(opts.Head),
		TargetBranch: gitlab.Ptr(opts.Base),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusConflict:
				return nil, fmt.Errorf("%w for %s", ErrPullRequestExists, opts.Head)
			case http.StatusBadRequest:
				if strings.Contains(err.Error(), "No commits between") {
					return nil, fmt.Errorf("%w (%s into %s)", ErrNoChanges, opts.Head, opts.Base)
				}
			}
		}
		return nil, p.wrapErr(resp, err, "create merge request")
	}
	return prFromGitLab(mr), nil
}

// FindPullRequest returns the open merge request from head into base, if
// any.
func (p *GitLab) FindPullRequest(ctx context.Context, head, base string) (*PullRequest, error) {
	mrs, resp, err := p.client.MergeRequests.ListProjectMergeRequests(p.projectID, &gitlab.ListProjectMergeRequestsOptions{
		State:        gitlab.Ptr("opened"),
		SourceBranch: gitlab.Ptr(head),
		TargetBranch: gitlab.Ptr(base),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, p.wrapErr(resp, err, "list merge requests")
	}
	if len(mrs) == 0 {
		return nil, nil
	}
	return prFromGitLab(mrs[0]), nil
}

// MergePullRequest merges a merge request by IID.
func (p *GitLab) MergePullRequest(ctx context.Context, number int, message string) error {
	mergeOpts := &gitlab.AcceptMergeRequestOptions{}
	if message != "" {
		mergeOpts.MergeCommitMessage = gitlab.Ptr(message)
	}

	_, resp, err := p.client.MergeRequests.AcceptMergeRequest(p.projectID, number, mergeOpts, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return fmt.Errorf("%w: !%d", ErrPullRequestNotFound, number)
			case http.StatusMethodNotAllowed, http.StatusNotAcceptable:
				return fmt.Errorf("%w: !%d", ErrMergeConflict, number)
			}
		}
		return p.wrapErr(resp, err, "merge merge request")
	}
	return nil
}

// EnsureRelease publishes a release on the tag unless one already exists.
func (p *GitLab) EnsureRelease(ctx context.Context, opts ReleaseOptions) (*Release, bool, error) {
	existing, resp, err := p.client.Releases.GetRelease(p.projectID, opts.TagName, gitlab.WithContext(ctx))
	if err == nil {
		return releaseFromGitLab(existing), false, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return nil, false, p.wrapErr(resp, err, "get release")
	}

	createOpts := &gitlab.CreateReleaseOptions{
		Name:        gitlab.Ptr(opts.Name),
		TagName:     gitlab.Ptr(opts.TagName),
		Description: gitlab.Ptr(opts.Body),
	}
	if opts.Target != "" {
		createOpts.Ref = gitlab.Ptr(opts.Target)
	}

	created, resp, err := p.client.Releases.CreateRelease(p.projectID, createOpts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, false, p.wrapErr(resp, err, "create release")
	}

	release := releaseFromGitLab(created)
	release.Prerelease = opts.Prerelease
	return release, true, nil
}

// LatestRelease returns the newest release.
func (p *GitLab) LatestRelease(ctx context.Context) (*Release, error) {
	return p.latestRelease(ctx, false)
}

// LatestPrerelease returns the newest upcoming release.
func (p *GitLab) LatestPrerelease(ctx context.Context) (*Release, error) {
	return p.latestRelease(ctx, true)
}

func (p *GitLab) latestRelease(ctx context.Context, upcoming bool) (*Release, error) {
	opts := &gitlab.ListReleasesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	for {
		releases, resp, err := p.client.Releases.ListReleases(p.projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, p.wrapErr(resp, err, "list releases")
		}
		for _, r := range releases {
			if r.UpcomingRelease == upcoming {
				return releaseFromGitLab(r), nil
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
func (p *GitLab) Compare(ctx context.Context, base, head string) ([]string, error) {
	comparison, resp, err := p.client.Repositories.Compare(p.projectID, &gitlab.CompareOptions{
		From: gitlab.Ptr(base),
		To:   gitlab.Ptr(head),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, p.wrapErr(resp, err, "compare")
	}

	messages := make([]string, 0, len(comparison.Commits))
	for _, c := range comparison.Commits {
		messages = append(messages, c.Message)
	}
	return messages, nil
}

func (p *GitLab) wrapErr(resp *gitlab.Response, err error, endpoint string) error {
	if resp == nil {
		return &octohttp.UnavailableError{Service: "gitlab", Err: err}
	}
	return &octohttp.APIError{
		Service:    "gitlab",
		StatusCode: resp.StatusCode,
		Message:    err.Error(),
		Endpoint:   endpoint,
	}
}

func prFromGitLab(mr *gitlab.MergeRequest) *PullRequest {
	return &PullRequest{
		Number: mr.IID,
		Title:  mr.Title,
		Body:   mr.Description,
		Head:   mr.SourceBranch,
		Base:   mr.TargetBranch,
		URL:    mr.WebURL,
	}
}

func releaseFromGitLab(r *gitlab.Release) *Release {
	return &Release{
		TagName:    r.TagName,
		Name:       r.Name,
		Body:       r.Description,
		Prerelease: r.UpcomingRelease,
	}
}
