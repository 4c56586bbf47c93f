package notify

import (
	"context"
	"log/slog"
)

// LogAnnouncer writes announcements to the log instead of a chat service.
type LogAnnouncer struct {
	Logger *slog.Logger
}

// NewLogAnnouncer creates an announcer that logs to the given logger, or the
// default logger when nil.
func NewLogAnnouncer(logger *slog.Logger) *LogAnnouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAnnouncer{Logger: logger}
}

// AnnounceRelease implements Announcer.
func (a *LogAnnouncer) AnnounceRelease(ctx context.Context, ann Announcement) error {
	a.Logger.InfoContext(ctx, "release announcement",
		"channel", ann.Channel,
		"topic", ann.Topic,
		"message", ann.Message,
	)
	return nil
}
