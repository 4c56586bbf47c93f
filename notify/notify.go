package notify

import "context"

// Announcement describes a release announcement: a dedicated channel with a
// topic pointing at the release ticket and a message carrying the changelog.
type Announcement struct {
	// Channel is the channel name to create or reuse.
	Channel string

	// Topic is set on the channel.
	Topic string

	// Message is posted to the channel.
	Message string
}

// Announcer publishes release announcements. Announcement failures are
// reported to the caller but must never abort a release; the orchestrator
// logs them and moves on.
type Announcer interface {
	AnnounceRelease(ctx context.Context, a Announcement) error
}

// Nop is the Announcer used when no chat integration is configured.
type Nop struct{}

// AnnounceRelease implements Announcer as a no-op.
func (Nop) AnnounceRelease(ctx context.Context, a Announcement) error {
	return nil
}
