package hosting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	octohttp "github.com/enderlabs/octoeb/http"
)

func newTestGitHub(t *testing.T, mux *http.ServeMux) *GitHub {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider, err := NewGitHub(Options{
		Token:   "token",
		Owner:   "enderlabs",
		Repo:    "product",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewGitHub() error = %v", err)
	}
	return provider
}

func TestGitHubGetBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/branches/main", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"main","commit":{"sha":"abc123"}}`))
	})

	provider := newTestGitHub(t, mux)
	branch, err := provider.GetBranch(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetBranch() error = %v", err)
	}
	if branch.Name != "main" || branch.SHA != "abc123" {
		t.Errorf("branch = %+v", branch)
	}
}

func TestGitHubGetBranchNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Branch not found"}`))
	})

	provider := newTestGitHub(t, mux)
	_, err := provider.GetBranch(context.Background(), "gone")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("error = %v, want ErrBranchNotFound", err)
	}
}

func TestGitHubResolveRef(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/commits/2026.31.0.01", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.github.sha")
		_, _ = w.Write([]byte("basesha"))
	})

	provider := newTestGitHub(t, mux)
	sha, err := provider.ResolveRef(context.Background(), "2026.31.0.01")
	if err != nil {
		t.Fatalf("ResolveRef() error = %v", err)
	}
	if sha != "basesha" {
		t.Errorf("sha = %q", sha)
	}
}

func TestGitHubEnsureBranchFromSHA(t *testing.T) {
	// A full commit SHA needs no lookup, so a branch can start from a
	// commit this repository never had a ref for.
	sha := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/branches/hotfix-EB-3-crash", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Branch not found"}`))
	})
	mux.HandleFunc("/repos/enderlabs/product/commits/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected ref resolution: %s", r.URL.Path)
	})
	mux.HandleFunc("/repos/enderlabs/product/git/refs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ref":"refs/heads/hotfix-EB-3-crash","object":{"sha":"` + sha + `"}}`))
	})

	provider := newTestGitHub(t, mux)
	branch, created, err := provider.EnsureBranch(context.Background(), "hotfix-EB-3-crash", sha)
	if err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}
	if !created || branch.SHA != sha {
		t.Errorf("branch = %+v created = %v", branch, created)
	}
}

func TestGitHubEnsureBranchExisting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/branches/release-eb-2026.32.0.01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"release-eb-2026.32.0.01","commit":{"sha":"abc123"}}`))
	})
	mux.HandleFunc("/repos/enderlabs/product/git/refs", func(w http.ResponseWriter, r *http.Request) {
		t.Error("existing branch must not be recreated")
	})

	provider := newTestGitHub(t, mux)
	branch, created, err := provider.EnsureBranch(context.Background(), "release-eb-2026.32.0.01", "main")
	if err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}
	if created {
		t.Error("created = true for existing branch")
	}
	if branch.SHA != "abc123" {
		t.Errorf("branch = %+v", branch)
	}
}

func TestGitHubEnsureBranchCreates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/branches/feature-EB-1-x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Branch not found"}`))
	})
	mux.HandleFunc("/repos/enderlabs/product/commits/main", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("basesha"))
	})
	mux.HandleFunc("/repos/enderlabs/product/git/refs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"ref":"refs/heads/feature-EB-1-x","object":{"sha":"basesha"}}`))
	})

	provider := newTestGitHub(t, mux)
	branch, created, err := provider.EnsureBranch(context.Background(), "feature-EB-1-x", "main")
	if err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}
	if !created {
		t.Error("created = false for new branch")
	}
	if branch.SHA != "basesha" {
		t.Errorf("branch = %+v", branch)
	}
}

func TestGitHubListBranchesPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/branches", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"release-eb-2026.31.0.01","commit":{"sha":"a"}},
			{"name":"release-eb-2026.32.0.01","commit":{"sha":"b"}},
			{"name":"main","commit":{"sha":"c"}}
		]`))
	})

	provider := newTestGitHub(t, mux)
	branches, err := provider.ListBranches(context.Background(), "release-")
	if err != nil {
		t.Fatalf("ListBranches() error = %v", err)
	}

	var names []string
	for _, b := range branches {
		names = append(names, b.Name)
	}
	want := []string{"release-eb-2026.31.0.01", "release-eb-2026.32.0.01"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestGitHubCreatePullRequestExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Validation Failed","errors":[{"message":"A pull request already exists for octocat:feature-EB-1-x."}]}`))
	})

	provider := newTestGitHub(t, mux)
	_, err := provider.CreatePullRequest(context.Background(), PullRequestOptions{
		Title: "EB-1",
		Head:  "octocat:feature-EB-1-x",
		Base:  "develop",
	})
	if !errors.Is(err, ErrPullRequestExists) {
		t.Errorf("error = %v, want ErrPullRequestExists", err)
	}
}

func TestGitHubEnsureReleaseExisting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/releases/tags/2026.32.0.01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"2026.32.0.01","name":"2026.32.0.01","prerelease":true}`))
	})
	mux.HandleFunc("/repos/enderlabs/product/releases", func(w http.ResponseWriter, r *http.Request) {
		t.Error("existing release must not be recreated")
	})

	provider := newTestGitHub(t, mux)
	release, created, err := provider.EnsureRelease(context.Background(), ReleaseOptions{
		TagName:    "2026.32.0.01",
		Prerelease: true,
	})
	if err != nil {
		t.Fatalf("EnsureRelease() error = %v", err)
	}
	if created {
		t.Error("created = true for existing release")
	}
	if !release.Prerelease {
		t.Error("prerelease flag lost")
	}
}

func TestGitHubEnsureReleasePromotesPrerelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/releases/tags/2026.32.0.01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":9,"tag_name":"2026.32.0.01","prerelease":true}`))
	})
	var promoted bool
	mux.HandleFunc("/repos/enderlabs/product/releases/9", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		promoted = true
		_, _ = w.Write([]byte(`{"id":9,"tag_name":"2026.32.0.01","prerelease":false}`))
	})

	provider := newTestGitHub(t, mux)
	release, created, err := provider.EnsureRelease(context.Background(), ReleaseOptions{
		TagName:    "2026.32.0.01",
		Prerelease: false,
	})
	if err != nil {
		t.Fatalf("EnsureRelease() error = %v", err)
	}
	if created {
		t.Error("promotion should not count as creation")
	}
	if !promoted {
		t.Error("existing pre-release was not promoted")
	}
	if release.Prerelease {
		t.Error("release still marked prerelease")
	}
}

func TestGitHubFindPullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/pulls", func(w http.ResponseWriter, r *http.Request) {
		if head := r.URL.Query().Get("head"); head != "enderlabs:release-eb-2026.32.0.01" {
			t.Errorf("head = %q", head)
		}
		_, _ = w.Write([]byte(`[{"number":41,"title":"Release","head":{"ref":"release-eb-2026.32.0.01"},"base":{"ref":"master"}}]`))
	})

	provider := newTestGitHub(t, mux)
	pr, err := provider.FindPullRequest(context.Background(), "release-eb-2026.32.0.01", "master")
	if err != nil {
		t.Fatalf("FindPullRequest() error = %v", err)
	}
	if pr == nil || pr.Number != 41 {
		t.Errorf("pr = %+v", pr)
	}
}

func TestGitHubFindPullRequestNone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/pulls", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	provider := newTestGitHub(t, mux)
	pr, err := provider.FindPullRequest(context.Background(), "feature-EB-1-x", "develop")
	if err != nil {
		t.Fatalf("FindPullRequest() error = %v", err)
	}
	if pr != nil {
		t.Errorf("pr = %+v, want nil", pr)
	}
}

func TestGitHubLatestRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/releases", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"tag_name":"2026.33.0.01","prerelease":true},
			{"tag_name":"2026.32.0.02","prerelease":false},
			{"tag_name":"2026.32.0.01","prerelease":false}
		]`))
	})

	provider := newTestGitHub(t, mux)

	release, err := provider.LatestRelease(context.Background())
	if err != nil {
		t.Fatalf("LatestRelease() error = %v", err)
	}
	if release.TagName != "2026.32.0.02" {
		t.Errorf("latest release = %q", release.TagName)
	}

	pre, err := provider.LatestPrerelease(context.Background())
	if err != nil {
		t.Fatalf("LatestPrerelease() error = %v", err)
	}
	if pre.TagName != "2026.33.0.01" {
		t.Errorf("latest prerelease = %q", pre.TagName)
	}
}

func TestGitHubLatestReleaseNone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/releases", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	provider := newTestGitHub(t, mux)
	if _, err := provider.LatestRelease(context.Background()); !errors.Is(err, ErrReleaseNotFound) {
		t.Errorf("error = %v, want ErrReleaseNotFound", err)
	}
}

func TestGitHubCompare(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/enderlabs/product/compare/2026.31.0.01...2026.32.0.01", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"commits":[
			{"commit":{"message":"Merge pull request #1 from octocat/feature-EB-1-add-x"}},
			{"commit":{"message":"fix typo"}}
		]}`))
	})

	provider := newTestGitHub(t, mux)
	messages, err := provider.Compare(context.Background(), "2026.31.0.01", "2026.32.0.01")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(messages) != 2 || messages[1] != "fix typo" {
		t.Errorf("messages = %v", messages)
	}
}

func TestGitHubServerErrorWraps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	})

	provider := newTestGitHub(t, mux)
	_, err := provider.ListBranches(context.Background(), "")
	var apiErr *octohttp.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *octohttp.APIError", err)
	}
	if apiErr.Service != "github" || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestNewFactory(t *testing.T) {
	opts := Options{Token: "t", Owner: "o", Repo: "r"}

	if _, err := New("github", opts); err != nil {
		t.Errorf("github provider error = %v", err)
	}
	if _, err := New("", opts); err != nil {
		t.Errorf("default provider error = %v", err)
	}
	if _, err := New("gitlab", opts); err != nil {
		t.Errorf("gitlab provider error = %v", err)
	}
	if _, err := New("bitbucket", opts); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("error = %v, want ErrUnknownProvider", err)
	}
}

func TestNewGitHubValidation(t *testing.T) {
	if _, err := NewGitHub(Options{Owner: "o", Repo: "r"}); !errors.Is(err, ErrTokenRequired) {
		t.Errorf("error = %v, want ErrTokenRequired", err)
	}
	if _, err := NewGitHub(Options{Token: "t"}); !errors.Is(err, ErrRepoRequired) {
		t.Errorf("error = %v, want ErrRepoRequired", err)
	}
}
