// Package errors provides CLI error patterns with user-friendly messaging.
//
// CLIError wraps a failure with a message, optional details (typically the
// remote API response), and an actionable suggestion. The command layer
// builds CLIErrors from the typed errors the domain packages return.
package errors
