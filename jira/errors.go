package jira

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	octohttp "github.com/enderlabs/octoeb/http"
)

// Configuration errors.
var (
	ErrConfigURLRequired  = errors.New("jira url is required")
	ErrConfigAuthRequired = errors.New("jira user and token are required")
)

// Operation errors.
var (
	ErrIssueNotFound       = errors.New("jira issue not found")
	ErrIssueKeyInvalid     = errors.New("invalid issue key format")
	ErrFilterNotFound      = errors.New("jira filter not found")
	ErrFilterNotConfigured = errors.New("no ticket filter id configured")
	ErrTransitionNotFound  = errors.New("transition not available for issue")
	ErrMethodUnknown       = errors.New("unknown jira method")
)

// errorBody is the Jira error response shape.
type errorBody struct {
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// parseAPIError converts a non-2xx response into an *octohttp.APIError,
// preserving the remote status and body.
func parseAPIError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(resp.Body)

	message := http.StatusText(resp.StatusCode)
	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil {
		if len(parsed.ErrorMessages) > 0 {
			message = parsed.ErrorMessages[0]
		} else {
			for field, msg := range parsed.Errors {
				message = field + ": " + msg
				break
			}
		}
	}

	return &octohttp.APIError{
		Service:    "jira",
		StatusCode: resp.StatusCode,
		Message:    message,
		Body:       string(body),
		Endpoint:   endpoint,
	}
}
