// Package hosting abstracts the source-host API behind the Provider
// interface, with implementations for GitHub and GitLab.
//
// The workflow commands operate on two providers built over the same token:
// one for the developer's fork and one for the mainline repository.
package hosting
