package config

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no .octoebrc exists on the search path.
var ErrNotFound = errors.New("no .octoebrc found (looked in current, config, and home directories)")

// ParseError indicates the configuration file exists but could not be parsed.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingKeyError names a required key absent from the configuration.
type MissingKeyError struct {
	Section string
	Key     string
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing %s in [%s] config", e.Key, e.Section)
}
