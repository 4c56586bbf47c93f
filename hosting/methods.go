package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// method is a named API call exposed through the "method" escape-hatch
// command.
type method struct {
	usage string
	args  int
	call  func(ctx context.Context, p Provider, args []string) (any, error)
}

var methods = map[string]method{
	"branch": {
		usage: "branch <name>",
		args:  1,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			return p.GetBranch(ctx, args[0])
		},
	},
	"branches": {
		usage: "branches <prefix>",
		args:  1,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			return p.ListBranches(ctx, args[0])
		},
	},
	"create-branch": {
		usage: "create-branch <name> <from-ref>",
		args:  2,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			branch, created, err := p.EnsureBranch(ctx, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return map[string]any{"branch": branch, "created": created}, nil
		},
	},
	"find-pr": {
		usage: "find-pr <head> <base>",
		args:  2,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			return p.FindPullRequest(ctx, args[0], args[1])
		},
	},
	"merge-pr": {
		usage: "merge-pr <number> <message>",
		args:  2,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("pull request number %q: %w", args[0], err)
			}
			if err := p.MergePullRequest(ctx, number, args[1]); err != nil {
				return nil, err
			}
			return map[string]string{"result": "ok"}, nil
		},
	},
	"latest-release": {
		usage: "latest-release",
		args:  0,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			return p.LatestRelease(ctx)
		},
	},
	"latest-prerelease": {
		usage: "latest-prerelease",
		args:  0,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			return p.LatestPrerelease(ctx)
		},
	},
	"resolve": {
		usage: "resolve <ref>",
		args:  1,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			sha, err := p.ResolveRef(ctx, args[0])
			if err != nil {
				return nil, err
			}
			return map[string]string{"sha": sha}, nil
		},
	},
	"compare": {
		usage: "compare <base> <head>",
		args:  2,
		call: func(ctx context.Context, p Provider, args []string) (any, error) {
			return p.Compare(ctx, args[0], args[1])
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

// Invoke calls a named API method on the provider with positional string
// arguments and returns the result as indented JSON. It backs the raw
// "method" command.
func Invoke(ctx context.Context, p Provider, name string, args ...string) (string, error) {
	m, ok := methods[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMethodUnknown, name)
	}
	if len(args) != m.args {
		return "", fmt.Errorf("usage: %s", m.usage)
	}

	result, err := m.call(ctx, p, args)
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}
