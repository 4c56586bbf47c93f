package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
)

// SlackAnnouncer publishes release announcements to Slack: it creates the
// release channel, invites the configured user group, sets the topic, and
// posts the changelog.
type SlackAnnouncer struct {
	client  *slack.Client
	groupID string
	logger  *slog.Logger
}

// SlackOption configures the announcer.
type SlackOption func(*SlackAnnouncer)

// WithAPIURL overrides the Slack API endpoint, for tests.
func WithAPIURL(url string) SlackOption {
	return func(a *SlackAnnouncer) {
		a.client = slack.New("test-token", slack.OptionAPIURL(url))
	}
}

// WithLogger sets the logger for non-fatal step failures.
func WithLogger(logger *slog.Logger) SlackOption {
	return func(a *SlackAnnouncer) {
		a.logger = logger
	}
}

// NewSlack creates a Slack announcer. groupID names the user group invited
// to release channels; empty means nobody is invited.
func NewSlack(token, groupID string, opts ...SlackOption) *SlackAnnouncer {
	a := &SlackAnnouncer{
		client:  slack.New(token),
		groupID: groupID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnnounceRelease implements Announcer. Channel creation is an upsert: a
// name_taken response reuses the existing channel. Invite and topic
// failures are logged and skipped so the announcement still goes out.
func (a *SlackAnnouncer) AnnounceRelease(ctx context.Context, ann Announcement) error {
	channelID, err := a.ensureChannel(ctx, ann.Channel)
	if err != nil {
		return fmt.Errorf("create channel %q: %w", ann.Channel, err)
	}

	a.inviteGroup(ctx, channelID)

	if ann.Topic != "" {
		if _, err := a.client.SetTopicOfConversationContext(ctx, channelID, ann.Topic); err != nil {
			a.logger.Warn("failed to set channel topic", "channel", ann.Channel, "error", err)
		}
	}

	if ann.Message != "" {
		_, _, err := a.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(ann.Message, false))
		if err != nil {
			return fmt.Errorf("post to %q: %w", ann.Channel, err)
		}
	}

	return nil
}

func (a *SlackAnnouncer) ensureChannel(ctx context.Context, name string) (string, error) {
	channel, err := a.client.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
	})
	if err == nil {
		return channel.ID, nil
	}
	if !strings.Contains(err.Error(), "name_taken") {
		return "", err
	}
	return a.findChannel(ctx, name)
}

func (a *SlackAnnouncer) findChannel(ctx context.Context, name string) (string, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           1000,
	}

	for {
		channels, cursor, err := a.client.GetConversationsContext(ctx, params)
		if err != nil {
			return "", err
		}
		for _, c := range channels {
			if c.Name == name {
				return c.ID, nil
			}
		}
		if cursor == "" {
			return "", fmt.Errorf("channel %q exists but was not found in listing", name)
		}
		params.Cursor = cursor
	}
}

func (a *SlackAnnouncer) inviteGroup(ctx context.Context, channelID string) {
	if a.groupID == "" {
		return
	}

	members, err := a.client.GetUserGroupMembersContext(ctx, a.groupID)
	if err != nil {
		a.logger.Warn("failed to resolve user group", "group", a.groupID, "error", err)
		return
	}
	if len(members) == 0 {
		return
	}

	if _, err := a.client.InviteUsersToConversationContext(ctx, channelID, members...); err != nil {
		// already_in_channel is the usual re-run case.
		a.logger.Warn("failed to invite user group", "group", a.groupID, "error", err)
	}
}
