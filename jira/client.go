package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	octohttp "github.com/enderlabs/octoeb/http"
)

// Config holds the connection settings for the tracker.
type Config struct {
	// BaseURL is the root of the Jira instance, e.g. "https://acme.atlassian.net".
	BaseURL string

	// User and Token authenticate every request (basic auth).
	User  string
	Token string

	// FilterID identifies the saved filter backing MyTickets.
	FilterID string
}

// Validate checks that the required connection settings are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigURLRequired
	}
	if c.User == "" || c.Token == "" {
		return ErrConfigAuthRequired
	}
	return nil
}

// Client provides access to the Jira REST API (v2, basic auth).
//
// Every operation issues exactly one authenticated request. Failures are
// never retried; a non-2xx response surfaces as an *octohttp.APIError and a
// transport failure as an *octohttp.UnavailableError.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Jira client.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetIssue retrieves an issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if !ValidateIssueKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrIssueKeyInvalid, key)
	}

	var issue Issue
	if err := c.get(ctx, "/issue/"+key, &issue); err != nil {
		if octohttp.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return nil, err
	}
	return &issue, nil
}

// GetFilter retrieves a saved filter by id.
func (c *Client) GetFilter(ctx context.Context, id string) (*Filter, error) {
	var filter Filter
	if err := c.get(ctx, "/filter/"+id, &filter); err != nil {
		if octohttp.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrFilterNotFound, id)
		}
		return nil, err
	}
	return &filter, nil
}

// SearchIssues runs a JQL query and returns the matching issues.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]Issue, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", "100")

	var result SearchResponse
	if err := c.get(ctx, "/search?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Issues, nil
}

// MyTickets returns the issues matched by the configured saved filter,
// typically "my open tickets".
func (c *Client) MyTickets(ctx context.Context) ([]Issue, error) {
	if c.cfg.FilterID == "" {
		return nil, ErrFilterNotConfigured
	}

	filter, err := c.GetFilter(ctx, c.cfg.FilterID)
	if err != nil {
		return nil, err
	}
	return c.SearchIssues(ctx, filter.JQL)
}

// CreateIssue creates an issue and returns it with its assigned key.
func (c *Client) CreateIssue(ctx context.Context, project, issueType, summary, description string) (*Issue, error) {
	body := &CreateIssueRequest{
		Fields: CreateIssueFields{
			Project:     ProjectRef{Key: project},
			IssueType:   IssueTypeRef{Name: issueType},
			Summary:     summary,
			Description: description,
		},
	}

	var created Issue
	if err := c.post(ctx, "/issue", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// LinkIssues creates a "Relates" link between two issues.
func (c *Client) LinkIssues(ctx context.Context, inwardKey, outwardKey string) error {
	if !ValidateIssueKey(inwardKey) {
		return fmt.Errorf("%w: %q", ErrIssueKeyInvalid, inwardKey)
	}
	if !ValidateIssueKey(outwardKey) {
		return fmt.Errorf("%w: %q", ErrIssueKeyInvalid, outwardKey)
	}

	body := &LinkRequest{
		Type:         LinkTypeRef{Name: "Relates"},
		InwardIssue:  IssueRef{Key: inwardKey},
		OutwardIssue: IssueRef{Key: outwardKey},
	}
	return c.post(ctx, "/issueLink", body, nil)
}

// GetTransitions gets the transitions available for an issue in its current
// status.
func (c *Client) GetTransitions(ctx context.Context, key string) ([]Transition, error) {
	if !ValidateIssueKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrIssueKeyInvalid, key)
	}

	var result TransitionsResponse
	if err := c.get(ctx, "/issue/"+key+"/transitions", &result); err != nil {
		if octohttp.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, key)
		}
		return nil, err
	}
	return result.Transitions, nil
}

// TransitionIssue executes a transition by id.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	body := &TransitionRequest{
		Transition: TransitionRef{ID: transitionID},
	}
	return c.post(ctx, "/issue/"+key+"/transitions", body, nil)
}

// TransitionIssueByName finds and executes a transition by name,
// case-insensitively. Issues already past the named transition report
// ErrTransitionNotFound; callers treating re-runs as benign should check for
// it with errors.Is.
func (c *Client) TransitionIssueByName(ctx context.Context, key, name string) error {
	transitions, err := c.GetTransitions(ctx, key)
	if err != nil {
		return err
	}

	for _, t := range transitions {
		if strings.EqualFold(t.Name, name) {
			return c.TransitionIssue(ctx, key, t.ID)
		}
	}
	return fmt.Errorf("%w: %q on %s", ErrTransitionNotFound, name, key)
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// post issues a POST request with a JSON body. When out is nil the response
// body is discarded.
func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/rest/api/2"+endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.User, c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &octohttp.UnavailableError{Service: "jira", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp, endpoint)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
