// Package config loads the .octoebrc ini configuration.
//
// The file is searched for in order: the current working directory, the
// platform config directory (e.g. $XDG_CONFIG_HOME/octoeb), then the home
// directory. The first file found wins. The parsed configuration is
// immutable for the lifetime of the process.
//
// Required sections and keys:
//
//	[repo]
//	OWNER=upstream-owner
//	FORK=fork-owner
//	REPO=repo-name
//	TOKEN=oauth-token
//	USER=login-email
//
//	[bugtracker]
//	BASE_URL=https://example.atlassian.net
//	USER=login-email
//	TOKEN=api-token
//
// The [slack] and [release] sections are optional; their absence disables
// notifications and falls back to default release naming respectively.
package config
