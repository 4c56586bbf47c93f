package errors

import (
	"strings"
)

// CLIError wraps an error with user-friendly context and a suggestion.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// New creates a CLIError with no underlying cause.
func New(message, suggestion string) *CLIError {
	return &CLIError{Message: message, Suggestion: suggestion}
}

// Wrap attaches a user-facing message and suggestion to err.
func Wrap(err error, message, suggestion string) *CLIError {
	return &CLIError{Err: err, Message: message, Suggestion: suggestion}
}

// WrapDetails attaches a message, detail text, and suggestion to err. The
// detail line typically carries the remote API response verbatim.
func WrapDetails(err error, message, details, suggestion string) *CLIError {
	return &CLIError{Err: err, Message: message, Details: details, Suggestion: suggestion}
}
