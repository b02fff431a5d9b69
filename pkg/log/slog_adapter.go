package log

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter mirrors discovery events to an slog.Logger at Debug level,
// or Warn level for errors.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as one structured record.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("op", event.Operation.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Backend != "" {
		attrs = append(attrs, slog.String("backend", event.Backend))
	}

	switch {
	case event.Reply != nil:
		r := event.Reply
		attrs = append(attrs,
			slog.String("flags", r.Flags.String()),
			slog.Int("error_code", int(r.ErrorCode)),
		)
		if r.InterfaceIndex != 0 {
			attrs = append(attrs, slog.Uint64("if_index", uint64(r.InterfaceIndex)))
		}
		if r.Name != "" {
			attrs = append(attrs, slog.String("name", r.Name))
		}
		if r.Regtype != "" {
			attrs = append(attrs, slog.String("regtype", r.Regtype), slog.String("domain", r.Domain))
		}
		if r.Fullname != "" {
			attrs = append(attrs,
				slog.String("fullname", r.Fullname),
				slog.String("host", r.Host),
				slog.Int("port", int(r.Port)),
			)
		}
		if len(r.TXT) > 0 {
			attrs = append(attrs, slog.String("txt", strings.Join(TXTStrings(r.TXT), " ")))
		}
	case event.State != nil:
		attrs = append(attrs, slog.String("state", event.State.State.String()))
		if event.State.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.State.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Code != 0 {
			attrs = append(attrs, slog.Int("error_code", int(event.Error.Code)))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("context", event.Error.Context))
		}
	}

	level := slog.LevelDebug
	if event.IsError() {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "discovery", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
