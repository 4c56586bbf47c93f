package git

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Gitflow branch kinds.
const (
	KindFeature    = "feature"
	KindHotfix     = "hotfix"
	KindReleasefix = "releasefix"
	KindRelease    = "release"
)

// versionRe accepts 4 or 5 dot-separated numeric segments, e.g.
// "2026.32.0.01" or "2026.32.0.01.2".
var versionRe = regexp.MustCompile(`^(?:\.?\d+){4,5}$`)

// ticketRe accepts tracker ids like "EB-123".
var ticketRe = regexp.MustCompile(`^[a-zA-Z]+-\d+$`)

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// ValidVersion reports whether s is an acceptable release version number.
func ValidVersion(s string) bool {
	return versionRe.MatchString(s)
}

// ValidTicket reports whether s is an acceptable ticket id.
func ValidTicket(s string) bool {
	return ticketRe.MatchString(s)
}

// ReleaseBranchVersion pins a full version to its release branch form: the
// first four segments with the last replaced by "01", so every fix release
// of a version maps to the same branch.
func ReleaseBranchVersion(version string) string {
	segments := strings.Split(version, ".")
	if len(segments) > 4 {
		segments = segments[:4]
	}
	segments[len(segments)-1] = "01"
	return strings.Join(segments, ".")
}

// NextVersion derives the next release version from the latest release tag:
// the second segment is incremented and the remainder reset, producing
// "a.b+1.0.01".
func NextVersion(latest string) (string, error) {
	segments := strings.Split(latest, ".")
	if len(segments) < 2 {
		return "", fmt.Errorf("cannot derive next version from %q", latest)
	}

	minor, err := strconv.Atoi(segments[1])
	if err != nil {
		return "", fmt.Errorf("cannot derive next version from %q: %w", latest, err)
	}

	return fmt.Sprintf("%s.%d.0.01", segments[0], minor+1), nil
}

// TicketBranch builds a gitflow branch name for a ticket:
// "<kind>-<TICKET-ID>-<summary-slug>".
func TicketBranch(kind, ticketID, summary string) string {
	name := kind + "-" + strings.ToUpper(ticketID)
	if slug := Slugify(summary); slug != "" {
		name += "-" + slug
	}
	return name
}

// ReleaseBranch builds a release branch name from the configured template
// parts: "prefix-main-version", with empty parts dropped.
func ReleaseBranch(prefix, main, version string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, main, ReleaseBranchVersion(version)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

// ChannelName converts a release branch name to a chat channel name:
// lowercase, dots replaced so the name satisfies channel naming rules.
func ChannelName(releaseBranch string) string {
	name := strings.ToLower(releaseBranch)
	name = strings.ReplaceAll(name, ".", "-")
	return Slugify(name)
}

// Slugify converts a string to a lowercase hyphenated slug.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// KindFromBranch extracts the gitflow kind prefix from a branch name, or
// returns an empty string when the branch does not follow the convention.
func KindFromBranch(branch string) string {
	prefix, _, found := strings.Cut(branch, "-")
	if !found {
		return ""
	}
	switch prefix {
	case KindFeature, KindHotfix, KindReleasefix, KindRelease:
		return prefix
	}
	return ""
}
