package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout trace output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// NewGrouped creates a logger that groups records under their scope headers.
func NewGrouped(w io.Writer, level slog.Level, collapse bool) *slog.Logger {
	return slog.New(NewGroupHandler(w, &GroupOptions{
		Level:    level,
		Collapse: collapse,
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Scope derives a child logger for a named scope, nested under any scope already set.
func Scope(logger *slog.Logger, names ...string) *slog.Logger {
	for _, name := range names {
		logger = logger.WithGroup(name)
	}
	return logger
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Standardize 'error' key to 'err'
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}
