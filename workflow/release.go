package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/enderlabs/octoeb/git"
	"github.com/enderlabs/octoeb/hosting"
)

// Release finalizes the pending release: merges the release branch into the
// release target, promotes the pre-release to a full release, and moves the
// release ticket to the done status. Version may be empty, in which case
// the latest pre-release determines it.
func (o *Orchestrator) Release(ctx context.Context, version string, verbose bool) error {
	version, err := o.resolvePendingVersion(ctx, version)
	if err != nil {
		return err
	}

	branch := o.releaseBranchName(version)
	if err := o.mergeReleaseBranch(ctx, branch); err != nil {
		return err
	}

	_, entries := o.releaseChangelog(ctx, branch)

	release, created, err := o.mainline.EnsureRelease(ctx, hosting.ReleaseOptions{
		TagName:    version,
		Target:     ReleaseTargetBranch,
		Name:       version,
		Body:       entries,
		Prerelease: false,
	})
	if err != nil {
		return fmt.Errorf("publish release %s: %w", version, err)
	}
	if created {
		o.step("published release %s", release.TagName)
	} else {
		o.step("release %s published", release.TagName)
	}

	if err := o.closeReleaseTicket(ctx, version); err != nil {
		return err
	}

	if verbose && entries != "" {
		o.step("%s", entries)
	}
	return nil
}

// resolvePendingVersion validates an explicit version or takes it from the
// latest pre-release tag.
func (o *Orchestrator) resolvePendingVersion(ctx context.Context, version string) (string, error) {
	if version != "" {
		if !git.ValidVersion(version) {
			return "", fmt.Errorf("%w: %q", ErrVersionInvalid, version)
		}
		return version, nil
	}

	pending, err := o.mainline.LatestPrerelease(ctx)
	if err != nil {
		if errors.Is(err, hosting.ErrReleaseNotFound) {
			return "", ErrNoReleases
		}
		return "", fmt.Errorf("find pending release: %w", err)
	}
	return pending.TagName, nil
}

// mergeReleaseBranch merges the release branch into the release target via
// a pull request, reusing an open one from a previous partial run.
func (o *Orchestrator) mergeReleaseBranch(ctx context.Context, branch string) error {
	pr, err := o.mainline.FindPullRequest(ctx, branch, ReleaseTargetBranch)
	if err != nil {
		return fmt.Errorf("find release pull request: %w", err)
	}

	if pr == nil {
		pr, err = o.mainline.CreatePullRequest(ctx, hosting.PullRequestOptions{
			Title: "Release " + branch,
			Head:  branch,
			Base:  ReleaseTargetBranch,
		})
		if errors.Is(err, hosting.ErrNoChanges) {
			o.step("%s already merged into %s", branch, ReleaseTargetBranch)
			return nil
		}
		if err != nil {
			return fmt.Errorf("open release pull request: %w", err)
		}
		o.step("opened release pull request #%d", pr.Number)
	}

	if err := o.mainline.MergePullRequest(ctx, pr.Number, "Release "+branch); err != nil {
		return fmt.Errorf("merge %s into %s: %w", branch, ReleaseTargetBranch, err)
	}
	o.step("merged %s into %s", branch, ReleaseTargetBranch)
	return nil
}

// closeReleaseTicket transitions the release ticket to the done status. A
// repository without a release ticket reports and continues.
func (o *Orchestrator) closeReleaseTicket(ctx context.Context, version string) error {
	summary := "Release " + version
	jql := fmt.Sprintf("project = %q AND issuetype = %q AND summary ~ %q",
		o.cfg.Tracker.ReleaseTicketProject, o.cfg.Tracker.ReleaseTicketType, summary)

	issues, err := o.tracker.SearchIssues(ctx, jql)
	if err != nil {
		return fmt.Errorf("find release ticket: %w", err)
	}
	for i := range issues {
		if issues[i].Fields.Summary == summary {
			return o.transition(ctx, issues[i].Key, o.cfg.Tracker.DoneStatus)
		}
	}

	o.step("no release ticket found for %s", version)
	return nil
}

// Versions prints the latest release and pre-release tags.
func (o *Orchestrator) Versions(ctx context.Context) error {
	release, err := o.mainline.LatestRelease(ctx)
	switch {
	case errors.Is(err, hosting.ErrReleaseNotFound):
		o.step("latest release: none")
	case err != nil:
		return fmt.Errorf("find latest release: %w", err)
	default:
		o.step("latest release: %s", release.TagName)
	}

	pending, err := o.mainline.LatestPrerelease(ctx)
	switch {
	case errors.Is(err, hosting.ErrReleaseNotFound):
		o.step("latest pre-release: none")
	case err != nil:
		return fmt.Errorf("find latest pre-release: %w", err)
	default:
		o.step("latest pre-release: %s", pending.TagName)
	}

	return nil
}
