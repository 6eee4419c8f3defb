package log

import (
	"context"
	"log/slog"
)

// SlogAdapter renders protocol events as slog debug lines, for
// watching line traffic on a console while a poll loop runs.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Identifiers, when the event carries them
	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}
	if event.Zone != 0 {
		attrs = append(attrs, slog.Int("zone", event.Zone))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}

	// One detail payload per event
	switch {
	case event.Line != nil:
		attrs = append(attrs,
			slog.String("line", event.Line.Text),
			slog.Int("size", event.Line.Size),
		)
	case event.Query != nil:
		attrs = append(attrs,
			slog.String("op", event.Query.Op.String()),
			slog.String("command", event.Query.Command),
			slog.Int("attempts", event.Query.Attempts),
			slog.Bool("matched", event.Query.Matched),
		)
		if event.Query.Reply != "" {
			attrs = append(attrs, slog.String("reply", event.Query.Reply))
		}
		if event.Query.Discarded > 0 {
			attrs = append(attrs, slog.Int("discarded", event.Query.Discarded))
		}
	case event.Action != nil:
		attrs = append(attrs,
			slog.String("op", event.Action.Op.String()),
			slog.String("command", event.Action.Command),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
