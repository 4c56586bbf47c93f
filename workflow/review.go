package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enderlabs/octoeb/git"
	"github.com/enderlabs/octoeb/hosting"
	"github.com/enderlabs/octoeb/jira"
)

// ReviewFeature opens a pull request for the ticket's feature branch and
// moves the ticket to the review status. An empty ticketID is inferred from
// the current branch name.
func (o *Orchestrator) ReviewFeature(ctx context.Context, ticketID string) error {
	return o.reviewTicketBranch(ctx, git.KindFeature, ticketID)
}

// ReviewHotfix opens a pull request for the ticket's hotfix branch.
func (o *Orchestrator) ReviewHotfix(ctx context.Context, ticketID string) error {
	return o.reviewTicketBranch(ctx, git.KindHotfix, ticketID)
}

// ReviewReleasefix opens a pull request against the pending release branch.
func (o *Orchestrator) ReviewReleasefix(ctx context.Context, ticketID string) error {
	return o.reviewTicketBranch(ctx, git.KindReleasefix, ticketID)
}

func (o *Orchestrator) reviewTicketBranch(ctx context.Context, kind, ticketID string) error {
	if ticketID == "" {
		if o.repo == nil {
			return ErrTicketRequired
		}
		inferred, err := o.repo.TicketFromBranch()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTicketRequired, err)
		}
		// Inferring from the wrong branch family would open the pull
		// request against the wrong base.
		if current, branchErr := o.repo.CurrentBranch(); branchErr == nil {
			if k := git.KindFromBranch(current); k != "" && k != kind {
				return fmt.Errorf("current branch %s is a %s branch; use `review %s` or pass -t", current, k, k)
			}
		}
		ticketID = inferred
	}

	issue, err := o.tracker.GetIssue(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("fetch ticket %s: %w", ticketID, err)
	}
	if err := o.checkTicketType(issue, kind); err != nil {
		return err
	}

	base, err := o.reviewBase(ctx, kind)
	if err != nil {
		return err
	}

	branch := git.TicketBranch(kind, issue.Key, issue.Fields.Summary)
	pr, err := o.mainline.CreatePullRequest(ctx, hosting.PullRequestOptions{
		Title: issue.Key + ": " + issue.Fields.Summary,
		Body:  o.pullRequestBody(issue, base),
		Head:  o.forkHead(branch),
		Base:  base,
	})
	switch {
	case errors.Is(err, hosting.ErrPullRequestExists):
		o.step("pull request for %s already open", branch)
	case err != nil:
		return fmt.Errorf("open pull request for %s: %w", branch, err)
	default:
		o.step("opened pull request #%d: %s", pr.Number, pr.URL)
	}

	return o.transition(ctx, issue.Key, o.cfg.Tracker.ReviewStatus)
}

// reviewBase picks the pull request target: the integration branch for
// features, the release target for hotfixes, and the pending release branch
// for fixes to a release in flight.
func (o *Orchestrator) reviewBase(ctx context.Context, kind string) (string, error) {
	switch kind {
	case git.KindFeature:
		return MainlineBranch, nil
	case git.KindHotfix:
		return ReleaseTargetBranch, nil
	case git.KindReleasefix:
		release, err := o.mainline.LatestPrerelease(ctx)
		if err != nil {
			return "", fmt.Errorf("find pending release: %w", err)
		}
		return o.releaseBranchName(release.TagName), nil
	default:
		return "", fmt.Errorf("unknown branch kind %q", kind)
	}
}

// pullRequestBody prefers the local commit messages since base; when the
// working copy is not available it falls back to the ticket summary and a
// link to the tracker.
func (o *Orchestrator) pullRequestBody(issue *jira.Issue, base string) string {
	if o.repo != nil {
		messages, err := o.repo.LogMessages(base)
		if err == nil && strings.TrimSpace(messages) != "" {
			return messages
		}
	}
	return fmt.Sprintf("%s\n\n%s/browse/%s",
		issue.Fields.Summary, strings.TrimSuffix(o.cfg.Tracker.BaseURL, "/"), issue.Key)
}

// QA lists the tickets matched by the configured saved filter. Read-only:
// the same ticket set is printed with or without per-ticket detail.
func (o *Orchestrator) QA(ctx context.Context, verbose bool) error {
	issues, err := o.tracker.MyTickets(ctx)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}

	for i := range issues {
		if verbose {
			o.step("%s", issues[i].Details())
		} else {
			o.step("%s", issues[i].Oneline())
		}
	}
	return nil
}

// MyTicketIDs returns the bare ticket ids from the saved filter, for shell
// completion.
func (o *Orchestrator) MyTicketIDs(ctx context.Context) ([]string, error) {
	issues, err := o.tracker.MyTickets(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(issues))
	for i := range issues {
		ids = append(ids, issues[i].Key)
	}
	return ids, nil
}
