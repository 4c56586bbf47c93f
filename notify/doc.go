// Package notify publishes release announcements. The Slack implementation
// is selected when a [slack] config section is present; otherwise commands
// run with the no-op announcer and behave identically apart from the
// announcement itself.
package notify
