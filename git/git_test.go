package git

import (
	"errors"
	"strings"
	"testing"
)

// mockRunner records git invocations and returns scripted output.
type mockRunner struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func newMockRunner() *mockRunner {
	return &mockRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (r *mockRunner) Run(dir, name string, args ...string) (string, error) {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	if err, ok := r.errs[call]; ok {
		return "", err
	}
	return r.outputs[call], nil
}

func newTestContext(runner CommandRunner) *Context {
	return &Context{repoPath: "/repo", runner: runner}
}

func TestCurrentBranch(t *testing.T) {
	runner := newMockRunner()
	runner.outputs["git rev-parse --abbrev-ref HEAD"] = "feature-EB-123-add-auth"

	g := newTestContext(runner)
	branch, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "feature-EB-123-add-auth" {
		t.Errorf("CurrentBranch() = %q", branch)
	}
}

func TestTicketFromBranch(t *testing.T) {
	tests := []struct {
		branch  string
		want    string
		wantErr error
	}{
		{"feature-EB-123-add-auth", "EB-123", nil},
		{"hotfix/EB-45-fix", "EB-45", nil},
		{"main", "", ErrNoTicketInBranch},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			runner := newMockRunner()
			runner.outputs["git rev-parse --abbrev-ref HEAD"] = tt.branch

			g := newTestContext(runner)
			got, err := g.TicketFromBranch()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("TicketFromBranch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStashCleanTree(t *testing.T) {
	runner := newMockRunner()
	runner.outputs["git stash create"] = ""

	g := newTestContext(runner)
	restore, err := g.Stash()
	if err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	restore()

	for _, call := range runner.calls {
		if strings.Contains(call, "stash pop") || strings.Contains(call, "reset") {
			t.Errorf("clean tree should not %q", call)
		}
	}
}

func TestStashDirtyTree(t *testing.T) {
	runner := newMockRunner()
	runner.outputs["git stash create"] = "deadbeef"

	g := newTestContext(runner)
	restore, err := g.Stash()
	if err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	restore()

	want := []string{
		"git stash create",
		"git stash store -q deadbeef",
		"git reset --hard -q",
		"git stash pop -q",
	}
	if strings.Join(runner.calls, ";") != strings.Join(want, ";") {
		t.Errorf("calls = %v, want %v", runner.calls, want)
	}
}

func TestWithBranchRestoresOriginal(t *testing.T) {
	runner := newMockRunner()
	runner.outputs["git rev-parse --abbrev-ref HEAD"] = "main"
	runner.outputs["git stash create"] = ""

	g := newTestContext(runner)
	ran := false
	err := g.WithBranch("release-eb-2026.32.0.01", "mainline", func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithBranch() error = %v", err)
	}
	if !ran {
		t.Error("fn was not invoked")
	}

	joined := strings.Join(runner.calls, ";")
	if !strings.Contains(joined, "git checkout -q release-eb-2026.32.0.01") {
		t.Errorf("release branch was never checked out: %v", runner.calls)
	}
	if !strings.HasSuffix(joined, "git checkout -q main") {
		t.Errorf("original branch not restored last: %v", runner.calls)
	}
}

func TestWithBranchPropagatesFnError(t *testing.T) {
	runner := newMockRunner()
	runner.outputs["git rev-parse --abbrev-ref HEAD"] = "main"
	runner.outputs["git stash create"] = ""

	g := newTestContext(runner)
	sentinel := errors.New("boom")
	err := g.WithBranch("develop", "mainline", func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want %v", err, sentinel)
	}
}

func TestBranchExists(t *testing.T) {
	runner := newMockRunner()
	runner.errs["git rev-parse --verify gone"] = errors.New("fatal: needed a single revision")

	g := newTestContext(runner)
	if g.BranchExists("gone") {
		t.Error("BranchExists should be false when rev-parse fails")
	}
	if !g.BranchExists("main") {
		t.Error("BranchExists should be true when rev-parse succeeds")
	}
}
