package hosting

import "errors"

var (
	ErrUnknownProvider     = errors.New("unknown hosting provider")
	ErrTokenRequired       = errors.New("host token is required")
	ErrRepoRequired        = errors.New("repository owner and name are required")
	ErrBranchNotFound      = errors.New("branch not found")
	ErrReleaseNotFound     = errors.New("release not found")
	ErrPullRequestExists   = errors.New("pull request already exists")
	ErrPullRequestNotFound = errors.New("pull request not found")
	ErrNoChanges           = errors.New("no commits between base and head")
	ErrMergeConflict       = errors.New("pull request cannot be merged")
	ErrMethodUnknown       = errors.New("unknown host API method")
)
