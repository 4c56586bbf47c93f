// Package workflow sequences the tracker, source-host, notification, and
// local git calls behind each octoeb command.
//
// Every command is a short fixed pipeline run strictly in order. The first
// failing required step aborts the command; steps already performed are
// reported and never rolled back. Remote-mutating steps are upserts where
// the API allows, so re-running a partially failed command completes the
// remainder instead of erroring.
package workflow
