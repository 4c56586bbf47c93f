package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// method is a named API call exposed through the "jira" escape-hatch command.
type method struct {
	usage string
	args  int
	call  func(ctx context.Context, c *Client, args []string) (any, error)
}

var methods = map[string]method{
	"issue": {
		usage: "issue <key>",
		args:  1,
		call: func(ctx context.Context, c *Client, args []string) (any, error) {
			return c.GetIssue(ctx, args[0])
		},
	},
	"filter": {
		usage: "filter <id>",
		args:  1,
		call: func(ctx context.Context, c *Client, args []string) (any, error) {
			return c.GetFilter(ctx, args[0])
		},
	},
	"search": {
		usage: "search <jql>",
		args:  1,
		call: func(ctx context.Context, c *Client, args []string) (any, error) {
			return c.SearchIssues(ctx, args[0])
		},
	},
	"transitions": {
		usage: "transitions <key>",
		args:  1,
		call: func(ctx context.Context, c *Client, args []string) (any, error) {
			return c.GetTransitions(ctx, args[0])
		},
	},
	"transition": {
		usage: "transition <key> <status-name>",
		args:  2,
		call: func(ctx context.Context, c *Client, args []string) (any, error) {
			err := c.TransitionIssueByName(ctx, args[0], args[1])
			return map[string]string{"result": "ok"}, err
		},
	},
	"link": {
		usage: "link <inward-key> <outward-key>",
		args:  2,
		call: func(ctx context.Context, c *Client, args []string) (any, error) {
			err := c.LinkIssues(ctx, args[0], args[1])
			return map[string]string{"result": "ok"}, err
		},
	},
}

// Methods lists the invocable method usages, sorted.
func Methods() []string {
	usages := make([]string, 0, len(methods))
	for _, m := range methods {
		usages = append(usages, m.usage)
	}
	sort.Strings(usages)
	return usages
}

// Invoke calls a named API method with positional string arguments and
// returns the result as indented JSON. It backs the raw "jira" command.
func (c *Client) Invoke(ctx context.Context, name string, args ...string) (string, error) {
	m, ok := methods[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMethodUnknown, name)
	}
	if len(args) != m.args {
		return "", fmt.Errorf("usage: %s", m.usage)
	}

	result, err := m.call(ctx, c, args)
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}
