package jira

import (
	"fmt"
	"regexp"
	"strings"
)

// issueKeyRe matches tracker keys like "EB-123".
var issueKeyRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-\d+$`)

// ValidateIssueKey reports whether key looks like a tracker issue key.
func ValidateIssueKey(key string) bool {
	return issueKeyRe.MatchString(key)
}

// Issue represents a Jira issue.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the issue fields octoeb works with. Descriptions are
// plain strings on API v2.
type IssueFields struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status,omitempty"`
	IssueType   IssueType `json:"issuetype,omitempty"`
	Project     Project   `json:"project,omitempty"`
	Assignee    *User     `json:"assignee,omitempty"`
}

// Oneline formats the issue as a single summary line.
func (i *Issue) Oneline() string {
	return fmt.Sprintf("%s\t%s", i.Key, i.Fields.Summary)
}

// Details formats the issue with status, type, and description.
func (i *Issue) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%s\n", i.Key, i.Fields.Summary)
	fmt.Fprintf(&b, "\tstatus: %s\ttype: %s\n", i.Fields.Status.Name, i.Fields.IssueType.Name)
	if desc := strings.TrimSpace(i.Fields.Description); desc != "" {
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(&b, "\t%s\n", line)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Status represents an issue status.
type Status struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// IssueType represents an issue type.
type IssueType struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Project represents a Jira project.
type Project struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// User represents a Jira user.
type User struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Filter represents a saved search filter.
type Filter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	JQL  string `json:"jql"`
}

// SearchResponse is the body of a JQL search.
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Transition represents a workflow transition available to an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to,omitempty"`
}

// TransitionsResponse is the body of a transitions listing.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// TransitionRequest executes a transition.
type TransitionRequest struct {
	Transition TransitionRef `json:"transition"`
}

// TransitionRef references a transition by id.
type TransitionRef struct {
	ID string `json:"id"`
}

// CreateIssueRequest creates an issue.
type CreateIssueRequest struct {
	Fields CreateIssueFields `json:"fields"`
}

// CreateIssueFields are the fields sent on issue creation.
type CreateIssueFields struct {
	Project     ProjectRef   `json:"project"`
	IssueType   IssueTypeRef `json:"issuetype"`
	Summary     string       `json:"summary"`
	Description string       `json:"description,omitempty"`
}

// ProjectRef references a project by key.
type ProjectRef struct {
	Key string `json:"key"`
}

// IssueTypeRef references an issue type by name.
type IssueTypeRef struct {
	Name string `json:"name"`
}

// IssueRef references an issue by key.
type IssueRef struct {
	Key string `json:"key"`
}

// LinkRequest links two issues.
type LinkRequest struct {
	Type         LinkTypeRef `json:"type"`
	InwardIssue  IssueRef    `json:"inwardIssue"`
	OutwardIssue IssueRef    `json:"outwardIssue"`
}

// LinkTypeRef references a link type by name.
type LinkTypeRef struct {
	Name string `json:"name"`
}
