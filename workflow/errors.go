package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReleases indicates a version could not be derived because the
	// repository has no release yet.
	ErrNoReleases = errors.New("no existing release to derive a version from")

	// ErrVersionInvalid indicates a version argument that does not match
	// the release numbering scheme.
	ErrVersionInvalid = errors.New("invalid version number")

	// ErrTicketRequired indicates no ticket id was given and none could be
	// inferred from the current branch.
	ErrTicketRequired = errors.New("ticket id required")
)

// TicketTypeMismatchError reports a ticket whose tracker type does not match
// the requested branch kind. It is raised before any side effect.
type TicketTypeMismatchError struct {
	Key  string
	Type string
	Want string
}

func (e *TicketTypeMismatchError) Error() string {
	return fmt.Sprintf("ticket %s has type %q, not a %s ticket", e.Key, e.Type, e.Want)
}
