// Package cli assembles the octoeb command tree and wires the workflow
// orchestrator to its collaborators from the .octoebrc configuration.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/enderlabs/octoeb/config"
	"github.com/enderlabs/octoeb/git"
	"github.com/enderlabs/octoeb/hosting"
	"github.com/enderlabs/octoeb/jira"
	"github.com/enderlabs/octoeb/notify"
	"github.com/enderlabs/octoeb/workflow"
)

// App holds the wired collaborators behind the command tree. Setup is
// deferred until a command actually runs so help and completion work
// without a configuration file.
type App struct {
	cfg      *config.Config
	tracker  *jira.Client
	fork     hosting.Provider
	mainline hosting.Provider
	orch     *workflow.Orchestrator
	logger   *slog.Logger
	out      io.Writer

	logLevel   string
	configPath string
}

// Execute runs the octoeb CLI and returns the first command error,
// decorated with a suggestion where one is known.
func Execute() error {
	app := &App{out: os.Stdout}
	root := app.rootCommand()
	if err := root.Execute(); err != nil {
		return decorate(err)
	}
	return nil
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "octoeb",
		Short:         "Gitflow release workflow helper",
		Long:          "octoeb drives the gitflow release workflow across the source host, the issue tracker, and the local working copy.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a .octoebrc (default: search current, config, and home directories)")

	root.AddCommand(
		a.startCommand(),
		a.reviewCommand(),
		a.qaCommand(),
		a.releaseCommand(),
		a.versionsCommand(),
		a.syncCommand(),
		a.updateCommand(),
		a.changelogCommand(),
		a.jiraCommand(),
		a.methodCommand(),
	)
	return root
}

// setup loads the configuration and builds the orchestrator. Idempotent so
// every RunE can call it first.
func (a *App) setup() error {
	if a.orch != nil {
		return nil
	}

	a.logger = newLogger(a.logLevel)
	slog.SetDefault(a.logger)

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	tracker, err := jira.NewClient(&jira.Config{
		BaseURL:  cfg.Tracker.BaseURL,
		User:     cfg.Tracker.User,
		Token:    cfg.Tracker.Token,
		FilterID: cfg.Tracker.TicketFilterID,
	})
	if err != nil {
		return fmt.Errorf("configure tracker: %w", err)
	}
	a.tracker = tracker

	mainline, err := hosting.New(cfg.Repo.Provider, hosting.Options{
		Token: cfg.Repo.Token,
		Owner: cfg.Repo.Owner,
		Repo:  cfg.Repo.Name,
	})
	if err != nil {
		return fmt.Errorf("configure source host: %w", err)
	}

	fork := mainline
	if cfg.Repo.Fork != cfg.Repo.Owner {
		fork, err = hosting.New(cfg.Repo.Provider, hosting.Options{
			Token: cfg.Repo.Token,
			Owner: cfg.Repo.Fork,
			Repo:  cfg.Repo.Name,
		})
		if err != nil {
			return fmt.Errorf("configure fork: %w", err)
		}
	}
	a.mainline = mainline
	a.fork = fork

	// Without a Slack token the announcement goes to the log instead,
	// visible only at info level and below, so the command behaves
	// identically either way.
	var announcer notify.Announcer = notify.NewLogAnnouncer(a.logger)
	if cfg.Slack.Enabled() {
		announcer = notify.NewSlack(cfg.Slack.Token, cfg.Slack.GroupID, notify.WithLogger(a.logger))
	}

	// The working copy is optional; remote-only commands run anywhere.
	var repo workflow.Repo
	if g, gitErr := git.NewContext("."); gitErr == nil {
		repo = g
	}

	a.orch = workflow.New(workflow.Deps{
		Config:    cfg,
		Tracker:   tracker,
		Fork:      fork,
		Mainline:  mainline,
		Repo:      repo,
		Announcer: announcer,
		Out:       a.out,
		Logger:    a.logger,
	})
	return nil
}

func (a *App) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	return config.Load()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// completeTicketIDs offers the ids from the user's saved tracker filter.
func (a *App) completeTicketIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := a.setup(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids, err := a.orch.MyTicketIDs(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
