// Package git wraps local git invocations for the workflow commands.
//
// Core types:
//   - Context: runs git in the working copy (fetch, checkout, pull, stash)
//   - CommandRunner: interface for executing git commands (mockable)
//
// The package also owns the gitflow naming conventions: ticket branch
// names, release branch templating, version validation, and changelog
// extraction from merge commits.
package git
