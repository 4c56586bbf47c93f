package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enderlabs/octoeb/config"
	"github.com/enderlabs/octoeb/git"
	"github.com/enderlabs/octoeb/hosting"
	"github.com/enderlabs/octoeb/jira"
	"github.com/enderlabs/octoeb/notify"
)

// Tracker issue-type names accepted per branch kind, lowercase. The release
// type is configurable and checked separately.
var (
	featureTypes = map[string]bool{
		"story":       true,
		"feature":     true,
		"task":        true,
		"improvement": true,
		"new feature": true,
	}
	fixTypes = map[string]bool{
		"bug":    true,
		"hotfix": true,
		"defect": true,
	}
)

// StartFeature cuts a feature branch for the ticket and moves it to the
// start status.
func (o *Orchestrator) StartFeature(ctx context.Context, ticketID string) error {
	return o.startTicketBranch(ctx, git.KindFeature, ticketID)
}

// StartHotfix cuts a hotfix branch from the latest release tag.
func (o *Orchestrator) StartHotfix(ctx context.Context, ticketID string) error {
	return o.startTicketBranch(ctx, git.KindHotfix, ticketID)
}

// StartReleasefix cuts a fix branch from the latest pre-release tag.
func (o *Orchestrator) StartReleasefix(ctx context.Context, ticketID string) error {
	return o.startTicketBranch(ctx, git.KindReleasefix, ticketID)
}

// startTicketBranch validates the ticket, creates the branch on the fork,
// and transitions the ticket. Validation happens before any side effect.
func (o *Orchestrator) startTicketBranch(ctx context.Context, kind, ticketID string) error {
	issue, err := o.tracker.GetIssue(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("fetch ticket %s: %w", ticketID, err)
	}

	if err := o.checkTicketType(issue, kind); err != nil {
		return err
	}

	base, err := o.branchBase(ctx, kind)
	if err != nil {
		return err
	}

	// Release tags and the integration branch live on the mainline, which
	// the fork may lack or lag behind. Resolve there and create the fork
	// branch from the commit itself.
	sha, err := o.mainline.ResolveRef(ctx, base)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", base, err)
	}

	name := git.TicketBranch(kind, issue.Key, issue.Fields.Summary)
	branch, created, err := o.fork.EnsureBranch(ctx, name, sha)
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	if created {
		o.step("created branch %s from %s (%s)", branch.Name, base, branch.SHA)
	} else {
		o.step("branch %s already exists (%s)", branch.Name, branch.SHA)
	}

	if err := o.transition(ctx, issue.Key, o.cfg.Tracker.StartStatus); err != nil {
		return err
	}

	o.step("fetch %s and check out %s to begin work", RemoteOrigin, branch.Name)
	return nil
}

// branchBase resolves the base ref for a new ticket branch: the integration
// branch for features, the latest release tag for hotfixes, and the latest
// pre-release tag for fixes to a pending release.
func (o *Orchestrator) branchBase(ctx context.Context, kind string) (string, error) {
	switch kind {
	case git.KindFeature:
		return MainlineBranch, nil
	case git.KindHotfix:
		release, err := o.mainline.LatestRelease(ctx)
		if err != nil {
			return "", fmt.Errorf("find latest release: %w", err)
		}
		return release.TagName, nil
	case git.KindReleasefix:
		release, err := o.mainline.LatestPrerelease(ctx)
		if err != nil {
			return "", fmt.Errorf("find latest pre-release: %w", err)
		}
		return release.TagName, nil
	default:
		return "", fmt.Errorf("unknown branch kind %q", kind)
	}
}

// checkTicketType ensures the tracker type of the issue matches the branch
// kind being started.
func (o *Orchestrator) checkTicketType(issue *jira.Issue, kind string) error {
	issueType := strings.ToLower(issue.Fields.IssueType.Name)

	var ok bool
	switch kind {
	case git.KindFeature:
		ok = featureTypes[issueType]
	case git.KindHotfix, git.KindReleasefix:
		ok = fixTypes[issueType]
	case git.KindRelease:
		ok = strings.EqualFold(issueType, o.cfg.Tracker.ReleaseTicketType)
	}

	if !ok {
		return &TicketTypeMismatchError{
			Key:  issue.Key,
			Type: issue.Fields.IssueType.Name,
			Want: kind,
		}
	}
	return nil
}

// StartRelease cuts the release branch from the integration branch, tags a
// pre-release on it, files the release ticket, and announces the release
// channel. Version may be empty, in which case the next version is derived
// from the latest release tag. Every mutating step is an upsert, so
// re-running after a partial failure completes the remainder.
func (o *Orchestrator) StartRelease(ctx context.Context, version string) error {
	version, err := o.resolveNewVersion(ctx, version)
	if err != nil {
		return err
	}

	name := o.releaseBranchName(version)
	branch, created, err := o.mainline.EnsureBranch(ctx, name, MainlineBranch)
	if err != nil {
		return fmt.Errorf("create release branch %s: %w", name, err)
	}
	if created {
		o.step("created release branch %s from %s", branch.Name, MainlineBranch)
	} else {
		o.step("release branch %s already exists", branch.Name)
	}

	prerelease, created, err := o.mainline.EnsureRelease(ctx, hosting.ReleaseOptions{
		TagName:    version,
		Target:     name,
		Name:       version,
		Body:       "",
		Prerelease: true,
	})
	if err != nil {
		return fmt.Errorf("create pre-release %s: %w", version, err)
	}
	if created {
		o.step("created pre-release %s on %s", prerelease.TagName, name)
	} else {
		o.step("pre-release %s already exists", prerelease.TagName)
	}

	tickets, entries := o.releaseChangelog(ctx, name)

	ticket, err := o.ensureReleaseTicket(ctx, version, entries)
	if err != nil {
		return fmt.Errorf("create release ticket: %w", err)
	}
	o.step("release ticket %s", ticket.Key)

	o.linkTickets(ctx, ticket.Key, tickets)
	o.announce(ctx, name, ticket.Key, entries)

	return nil
}

// resolveNewVersion validates an explicit version or derives the next one
// from the latest release tag.
func (o *Orchestrator) resolveNewVersion(ctx context.Context, version string) (string, error) {
	if version != "" {
		if !git.ValidVersion(version) {
			return "", fmt.Errorf("%w: %q", ErrVersionInvalid, version)
		}
		return version, nil
	}

	latest, err := o.mainline.LatestRelease(ctx)
	if err != nil {
		if errors.Is(err, hosting.ErrReleaseNotFound) {
			return "", ErrNoReleases
		}
		return "", fmt.Errorf("find latest release: %w", err)
	}

	next, err := git.NextVersion(latest.TagName)
	if err != nil {
		return "", fmt.Errorf("derive next version from %s: %w", latest.TagName, err)
	}
	return next, nil
}

// releaseChangelog extracts ticket ids and changelog entries from the
// commits between the latest full release and the release branch.
// Best-effort: a repository with no previous release has no changelog.
func (o *Orchestrator) releaseChangelog(ctx context.Context, head string) ([]string, string) {
	latest, err := o.mainline.LatestRelease(ctx)
	if err != nil {
		if !errors.Is(err, hosting.ErrReleaseNotFound) {
			o.logger.Warn("changelog skipped", "error", err)
		}
		return nil, ""
	}

	messages, err := o.mainline.Compare(ctx, latest.TagName, head)
	if err != nil {
		o.logger.Warn("changelog skipped", "error", err)
		return nil, ""
	}

	tickets, entries, err := git.Changelog(strings.Join(messages, "\n"), o.changelogOptions())
	if err != nil {
		o.logger.Warn("changelog skipped", "error", err)
		return nil, ""
	}
	return tickets, entries
}

// ensureReleaseTicket finds or files the tracker ticket for a release.
// Re-runs find the existing ticket instead of filing a duplicate.
func (o *Orchestrator) ensureReleaseTicket(ctx context.Context, version, changelog string) (*jira.Issue, error) {
	summary := "Release " + version
	jql := fmt.Sprintf("project = %q AND issuetype = %q AND summary ~ %q",
		o.cfg.Tracker.ReleaseTicketProject, o.cfg.Tracker.ReleaseTicketType, summary)

	existing, err := o.tracker.SearchIssues(ctx, jql)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Fields.Summary == summary {
			return &existing[i], nil
		}
	}

	return o.tracker.CreateIssue(ctx,
		o.cfg.Tracker.ReleaseTicketProject,
		o.cfg.Tracker.ReleaseTicketType,
		summary,
		changelog,
	)
}

// linkTickets links the changelog tickets to the release ticket.
// Best-effort: failures warn and continue.
func (o *Orchestrator) linkTickets(ctx context.Context, releaseKey string, tickets []string) {
	for _, key := range tickets {
		if err := o.tracker.LinkIssues(ctx, releaseKey, key); err != nil {
			o.logger.Warn("failed to link ticket to release", "ticket", key, "release", releaseKey, "error", err)
		}
	}
}

// announce publishes the release channel. Announcement failures never abort
// the command.
func (o *Orchestrator) announce(ctx context.Context, releaseBranch, ticketKey, changelog string) {
	topic := o.cfg.Slack.TopicTemplate
	if topic == "" {
		topic = config.DefaultTopicTemplate
	}

	err := o.announcer.AnnounceRelease(ctx, notify.Announcement{
		Channel: git.ChannelName(releaseBranch),
		Topic:   fmt.Sprintf(topic, ticketKey),
		Message: changelog,
	})
	if err != nil {
		o.logger.Warn("release announcement failed", "error", err)
		return
	}
	o.step("announced release channel %s", git.ChannelName(releaseBranch))
}

// transition moves a ticket to the named status. A transition that is not
// available is treated as already done, keeping re-runs benign.
func (o *Orchestrator) transition(ctx context.Context, key, status string) error {
	err := o.tracker.TransitionIssueByName(ctx, key, status)
	if err != nil {
		if errors.Is(err, jira.ErrTransitionNotFound) {
			o.step("ticket %s is already past %q", key, status)
			return nil
		}
		return fmt.Errorf("transition %s to %q: %w", key, status, err)
	}
	o.step("ticket %s moved to %q", key, status)
	return nil
}
