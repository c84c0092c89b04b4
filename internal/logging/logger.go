package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process logger. Records are JSON lines on stdout and, when
// logstashAddr is set, mirrored to Logstash. The returned closer releases the
// Logstash connection and is never nil.
func Setup(level, logstashAddr string) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(logstashAddr) != "" {
		if w, err := NewLogstashWriter(logstashAddr); err == nil {
			out = io.MultiWriter(os.Stdout, w)
			closer = w
		}
	}
	return New(out, level), closer
}

func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
