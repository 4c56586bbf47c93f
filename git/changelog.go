package git

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default merge-commit patterns. The first capture group is the ticket id;
// the entry pattern's second group is the hyphenated title.
const (
	DefaultEntryPattern  = `(?i)merge pull request #\d+ from [\w/]*(?:[/-]([a-z]{2,4}-\d+)-(\S*))`
	DefaultTicketPattern = `(?i)merge pull request #\d+ from [\w/]*(?:[/-]([a-z]+-\d+))`
)

// ChangelogOptions overrides the merge-commit patterns, typically from the
// [repo] config section.
type ChangelogOptions struct {
	EntryPattern  string
	TicketPattern string
}

var titleCaser = cases.Title(language.English)

// Changelog extracts ticket ids and human-readable changelog entries from a
// merge-commit log (as produced by Context.MergeLog). Entries are sorted,
// de-duplicated lines of the form "* EB-123 : Title Words".
func Changelog(log string, opts ChangelogOptions) (tickets []string, entries string, err error) {
	entryPattern := opts.EntryPattern
	if entryPattern == "" {
		entryPattern = DefaultEntryPattern
	}
	ticketPattern := opts.TicketPattern
	if ticketPattern == "" {
		ticketPattern = DefaultTicketPattern
	}

	entryRe, err := regexp.Compile(entryPattern)
	if err != nil {
		return nil, "", err
	}
	ticketRe, err := regexp.Compile(ticketPattern)
	if err != nil {
		return nil, "", err
	}

	seen := make(map[string]bool)
	for _, match := range ticketRe.FindAllStringSubmatch(log, -1) {
		id := strings.ToUpper(match[1])
		if !seen[id] {
			seen[id] = true
			tickets = append(tickets, id)
		}
	}
	sort.Strings(tickets)

	lines := make(map[string]bool)
	for _, match := range entryRe.FindAllStringSubmatch(log, -1) {
		title := strings.NewReplacer("-", " ", "_", " ").Replace(match[2])
		line := "* " + strings.ToUpper(match[1]) + " : " + titleCaser.String(title)
		lines[line] = true
	}

	sorted := make([]string, 0, len(lines))
	for line := range lines {
		sorted = append(sorted, line)
	}
	sort.Strings(sorted)

	return tickets, strings.Join(sorted, "\n"), nil
}
