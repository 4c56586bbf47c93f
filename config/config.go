package config

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// FileName is the configuration file octoeb looks for.
const FileName = ".octoebrc"

// Defaults for optional keys.
const (
	DefaultReleaseTicketProject = "MAN"
	DefaultReleaseTicketType    = "RELEASE"
	DefaultReleasePrefix        = "release"
	DefaultStartStatus          = "In Progress"
	DefaultReviewStatus         = "In Review"
	DefaultDoneStatus           = "Done"
	DefaultTopicTemplate        = "Release Ticket: %s"
	DefaultProvider             = "github"
)

// Config is the parsed .octoebrc. It is loaded once per invocation and
// never mutated afterwards.
type Config struct {
	Repo    RepoConfig
	Tracker TrackerConfig
	Slack   SlackConfig
	Release ReleaseConfig

	// Path is the file the configuration was loaded from.
	Path string
}

// RepoConfig is the [repo] section: the source-hosting repository and
// credentials. Fork is the owner of the contributor's fork, which may differ
// from the upstream Owner.
type RepoConfig struct {
	Owner    string
	Fork     string
	Name     string
	Token    string
	User     string
	Provider string // "github" or "gitlab"

	// ChangelogPattern and TicketPattern override the merge-commit regexes
	// used for changelog extraction. Empty means the defaults.
	ChangelogPattern string
	TicketPattern    string
}

// TrackerConfig is the [bugtracker] section: the issue-tracker endpoint,
// credentials, and workflow status names.
type TrackerConfig struct {
	BaseURL        string
	User           string
	Token          string
	TicketFilterID string

	ReleaseTicketProject string
	ReleaseTicketType    string

	StartStatus  string
	ReviewStatus string
	DoneStatus   string
}

// SlackConfig is the optional [slack] section. When absent, notification
// steps become no-ops.
type SlackConfig struct {
	Token         string
	GroupID       string
	TopicTemplate string
}

// Enabled reports whether Slack notifications are configured.
func (s SlackConfig) Enabled() bool {
	return s.Token != ""
}

// ReleaseConfig is the optional [release] section used to template release
// branch and channel names as prefix-main-version.
type ReleaseConfig struct {
	Prefix string
	Main   string
}

// SearchPaths returns the candidate config file locations in precedence
// order: current directory, then the platform config directory under an
// "octoeb" subdirectory, then the home directory. It is a pure function of
// the supplied directories so the search order itself is testable.
func SearchPaths(cwd, configHome, home string) []string {
	var paths []string
	if cwd != "" {
		paths = append(paths, filepath.Join(cwd, FileName))
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "octoeb", FileName))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, FileName))
	}
	return paths
}

// DefaultSearchPaths resolves the search path from the process environment.
func DefaultSearchPaths() []string {
	cwd, _ := os.Getwd()
	configHome, _ := os.UserConfigDir()
	home, _ := os.UserHomeDir()
	return SearchPaths(cwd, configHome, home)
}

// Load locates and parses the first .octoebrc on the default search path.
func Load() (*Config, error) {
	return LoadPaths(DefaultSearchPaths())
}

// LoadPaths tries each candidate path in order and parses the first file
// that exists. It returns ErrNotFound if none exist.
func LoadPaths(paths []string) (*Config, error) {
	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return LoadFile(path)
	}
	return nil, ErrNotFound
}

// LoadFile parses a single configuration file and validates required keys.
func LoadFile(path string) (*Config, error) {
	file, loadErr := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if loadErr != nil {
		return nil, &ParseError{Path: path, Err: loadErr}
	}

	cfg := &Config{Path: path}

	repo := file.Section("repo")
	cfg.Repo = RepoConfig{
		Owner:    repo.Key("owner").String(),
		Fork:     repo.Key("fork").String(),
		Name:     repo.Key("repo").String(),
		Token:    repo.Key("token").String(),
		User:     repo.Key("user").String(),
		Provider: keyOr(repo, "provider", DefaultProvider),

		ChangelogPattern: repo.Key("changelog_re").String(),
		TicketPattern:    repo.Key("issue_re").String(),
	}

	tracker := file.Section("bugtracker")
	cfg.Tracker = TrackerConfig{
		BaseURL:              tracker.Key("base_url").String(),
		User:                 tracker.Key("user").String(),
		Token:                tracker.Key("token").String(),
		TicketFilterID:       tracker.Key("ticket_filter_id").String(),
		ReleaseTicketProject: keyOr(tracker, "release_ticket_project", DefaultReleaseTicketProject),
		ReleaseTicketType:    keyOr(tracker, "release_ticket_type", DefaultReleaseTicketType),
		StartStatus:          keyOr(tracker, "start_status", DefaultStartStatus),
		ReviewStatus:         keyOr(tracker, "review_status", DefaultReviewStatus),
		DoneStatus:           keyOr(tracker, "done_status", DefaultDoneStatus),
	}

	if file.HasSection("slack") {
		slack := file.Section("slack")
		cfg.Slack = SlackConfig{
			Token:   slack.Key("token").String(),
			GroupID: slack.Key("group_id").String(),
		}
		cfg.Slack.TopicTemplate = slack.Key("topic_str").String()
	}
	// Announcers other than Slack also template the topic.
	if cfg.Slack.TopicTemplate == "" {
		cfg.Slack.TopicTemplate = DefaultTopicTemplate
	}

	release := file.Section("release")
	cfg.Release = ReleaseConfig{
		Prefix: keyOr(release, "prefix", DefaultReleasePrefix),
		Main:   release.Key("main").String(),
	}

	if validateErr := cfg.validate(); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// validate checks that every required key is present. Unknown keys are
// ignored by construction.
func (c *Config) validate() error {
	required := []struct {
		section, key, value string
	}{
		{"repo", "OWNER", c.Repo.Owner},
		{"repo", "FORK", c.Repo.Fork},
		{"repo", "REPO", c.Repo.Name},
		{"repo", "TOKEN", c.Repo.Token},
		{"repo", "USER", c.Repo.User},
		{"bugtracker", "BASE_URL", c.Tracker.BaseURL},
		{"bugtracker", "USER", c.Tracker.User},
		{"bugtracker", "TOKEN", c.Tracker.Token},
	}

	for _, r := range required {
		if r.value == "" {
			return &MissingKeyError{Section: r.section, Key: r.key}
		}
	}

	return nil
}

func keyOr(section *ini.Section, name, fallback string) string {
	if v := section.Key(name).String(); v != "" {
		return v
	}
	return fallback
}
