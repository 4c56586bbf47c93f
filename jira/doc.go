// Package jira provides a minimal Jira REST API v2 client for the release
// workflow: issue lookup, saved-filter searches, issue creation and linking,
// and status transitions by name.
//
// The client authenticates with basic auth and performs exactly one request
// per operation. Non-2xx responses surface as API errors carrying the remote
// status and body; transport failures surface as unavailable errors.
package jira
