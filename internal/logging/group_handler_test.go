package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupHandler_LogsWithoutScope(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGrouped(&buf, slog.LevelInfo, false)

	logger.Info("hello", "some", "data")

	assert.Equal(t, "INFO  hello some=data\n", buf.String())
}

func TestGroupHandler_PrintsHeaderOncePerScope(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGrouped(&buf, slog.LevelInfo, false)

	child := Scope(logger, "animate", "moon")
	child.Info("first")
	child.Info("second")

	want := "animate\n" +
		"  moon\n" +
		"    INFO  first\n" +
		"    INFO  second\n"
	assert.Equal(t, want, buf.String())
}

func TestGroupHandler_ReopensOnlyDivergingScopes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGrouped(&buf, slog.LevelInfo, false)

	Scope(logger, "animate", "moon").Info("a")
	Scope(logger, "animate", "rocket").Info("b")

	want := "animate\n" +
		"  moon\n" +
		"    INFO  a\n" +
		"  rocket\n" +
		"    INFO  b\n"
	assert.Equal(t, want, buf.String())
}

func TestGroupHandler_Collapse(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGrouped(&buf, slog.LevelInfo, true)

	Scope(logger, "animate", "moon").Info("state", "error", "boom")

	assert.Equal(t, "[animate > moon] INFO  state err=boom\n", buf.String())
}

func TestGroupHandler_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGrouped(&buf, slog.LevelWarn, false)

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.Equal(t, "WARN  shown\n", buf.String())
}

func TestGroupHandler_BoundAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGrouped(&buf, slog.LevelInfo, true).With("coordinator", "moon")

	logger.Info("dispatch", "matched", true)

	assert.Equal(t, "INFO  dispatch coordinator=moon matched=true\n", buf.String())
}
