package git

import (
	"reflect"
	"testing"
)

const sampleMergeLog = `a1b2c3d Merge pull request #410 from octocat/feature-EB-123-add-user-auth
d4e5f6a Merge pull request #411 from octocat/hotfix-EB-45-fix_login_crash
b7c8d9e Merge pull request #412 from octocat/feature-EB-123-add-user-auth
c0d1e2f Merge pull request #413 from octocat/chore-no-ticket-here
`

func TestChangelog(t *testing.T) {
	tickets, entries, err := Changelog(sampleMergeLog, ChangelogOptions{})
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}

	wantTickets := []string{"EB-123", "EB-45"}
	if !reflect.DeepEqual(tickets, wantTickets) {
		t.Errorf("tickets = %v, want %v", tickets, wantTickets)
	}

	wantEntries := "* EB-123 : Add User Auth\n* EB-45 : Fix Login Crash"
	if entries != wantEntries {
		t.Errorf("entries = %q, want %q", entries, wantEntries)
	}
}

func TestChangelogEmptyLog(t *testing.T) {
	tickets, entries, err := Changelog("", ChangelogOptions{})
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("tickets = %v, want none", tickets)
	}
	if entries != "" {
		t.Errorf("entries = %q, want empty", entries)
	}
}

func TestChangelogCustomPattern(t *testing.T) {
	log := "Merged PR 99: proj-77 improve caching"
	tickets, _, err := Changelog(log, ChangelogOptions{
		EntryPattern:  `(?i)Merged PR \d+: ([a-z]+-\d+) (\S+)`,
		TicketPattern: `(?i)Merged PR \d+: ([a-z]+-\d+)`,
	})
	if err != nil {
		t.Fatalf("Changelog() error = %v", err)
	}
	if !reflect.DeepEqual(tickets, []string{"PROJ-77"}) {
		t.Errorf("tickets = %v, want [PROJ-77]", tickets)
	}
}

func TestChangelogBadPattern(t *testing.T) {
	if _, _, err := Changelog("log", ChangelogOptions{EntryPattern: "("}); err == nil {
		t.Error("invalid pattern should fail")
	}
}
