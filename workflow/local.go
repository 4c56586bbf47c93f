package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/enderlabs/octoeb/git"
	"github.com/enderlabs/octoeb/hosting"
)

// Sync updates the local integration branch: fetch the mainline remote and
// rebase onto its integration branch. A failed rebase is aborted so the
// working copy is left usable.
func (o *Orchestrator) Sync() error {
	if o.repo == nil {
		return git.ErrNotGitRepo
	}

	if err := o.repo.Fetch(RemoteUpstream); err != nil {
		return fmt.Errorf("fetch %s: %w", RemoteUpstream, err)
	}
	o.step("fetched %s", RemoteUpstream)

	if err := o.repo.PullRebase(RemoteUpstream, MainlineBranch); err != nil {
		if abortErr := o.repo.RebaseAbort(); abortErr != nil {
			o.logger.Warn("failed to abort rebase", "error", abortErr)
		}
		return fmt.Errorf("rebase onto %s/%s: %w", RemoteUpstream, MainlineBranch, err)
	}
	o.step("rebased onto %s/%s", RemoteUpstream, MainlineBranch)
	return nil
}

// Update syncs the current branch with the mainline integration branch and
// force-pushes it to the fork.
func (o *Orchestrator) Update() error {
	if o.repo == nil {
		return git.ErrNotGitRepo
	}

	current, err := o.repo.CurrentBranch()
	if err != nil {
		return fmt.Errorf("determine current branch: %w", err)
	}

	if err := o.Sync(); err != nil {
		return err
	}

	if err := o.repo.Push(RemoteOrigin, current, true); err != nil {
		return fmt.Errorf("push %s to %s: %w", current, RemoteOrigin, err)
	}
	o.step("pushed %s to %s", current, RemoteOrigin)
	return nil
}

// Changelog prints the tickets and changelog entries merged between base
// and head. An empty base defaults to the latest release tag; an empty head
// defaults to the integration branch.
func (o *Orchestrator) Changelog(ctx context.Context, base, head string) error {
	if o.repo == nil {
		return git.ErrNotGitRepo
	}

	if head == "" {
		head = MainlineBranch
	}
	if base == "" {
		latest, err := o.mainline.LatestRelease(ctx)
		if err != nil {
			if errors.Is(err, hosting.ErrReleaseNotFound) {
				return ErrNoReleases
			}
			return fmt.Errorf("find latest release: %w", err)
		}
		base = latest.TagName
	}

	// When head is a local branch, read the log on a freshly pulled copy
	// of it, preserving whatever the working copy had checked out.
	var log string
	var err error
	if o.repo.BranchExists(head) {
		err = o.repo.WithBranch(head, RemoteUpstream, func() error {
			var logErr error
			log, logErr = o.repo.MergeLog(base, head)
			return logErr
		})
	} else {
		log, err = o.repo.MergeLog(base, head)
	}
	if err != nil {
		return fmt.Errorf("read merge log %s..%s: %w", base, head, err)
	}

	tickets, entries, err := git.Changelog(log, o.changelogOptions())
	if err != nil {
		return fmt.Errorf("extract changelog: %w", err)
	}

	if entries == "" {
		o.step("no merged tickets between %s and %s", base, head)
		return nil
	}
	o.step("%s", entries)
	o.step("\n%d tickets", len(tickets))
	return nil
}
