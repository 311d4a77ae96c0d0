package logger

import (
	"io"
	"log/slog"
	"time"
)

// newTextHandler creates the human-readable console handler. Timestamps are
// dropped and time-valued attributes are shown in the configured timezone.
func newTextHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Value.Kind() == slog.KindTime {
				return slog.Time(a.Key, a.Value.Time().In(tz))
			}
			return levelNameReplacer(groups, a)
		},
	})
}
