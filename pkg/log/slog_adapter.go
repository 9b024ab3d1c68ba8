package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see device access in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level, or at Warn level
// for failed operations.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("op", event.Op.String()),
		slog.String("category", event.Category.String()),
		slog.Int("minor", event.Minor),
	}

	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.Serial != "" {
		attrs = append(attrs, slog.String("serial", event.Serial))
	}

	switch {
	case event.Open != nil:
		attrs = append(attrs,
			slog.String("mode", event.Open.Mode.String()),
			slog.String("permission", event.Open.Permission.String()),
		)
	case event.Transfer != nil:
		attrs = append(attrs,
			slog.Int("requested", event.Transfer.Requested),
			slog.Int("count", event.Transfer.Count),
			slog.Int64("offset", event.Transfer.Offset),
			slog.Int64("position", event.Transfer.Position),
		)
	case event.Seek != nil:
		attrs = append(attrs,
			slog.Int64("offset", event.Seek.Offset),
			slog.String("whence", WhenceName(event.Seek.Whence)),
			slog.Int64("from", event.Seek.From),
			slog.Int64("position", event.Seek.Position),
		)
	}

	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Errno != nil {
			attrs = append(attrs, slog.Int("errno", *event.Error.Errno))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "access", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
