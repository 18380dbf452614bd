package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotsMarkdown(t *testing.T) {
	md := SnapshotsMarkdown("launch", []lifecycle.Snapshot{
		{ID: "rocket", Name: "Rocket", Current: domain.StateFinished, Visible: true, ActionCount: 2, Attached: true,
			ChildStates: map[string]domain.LifecycleState{"fin": domain.StateUnset, "engine": domain.StateRunning}},
		{ID: "engine", Current: domain.StateRunning},
	})

	assert.True(t, strings.HasPrefix(md, "# launch\n"))
	assert.Contains(t, md, "| Rocket (rocket) | finished | true | 2 | true | engine: running, fin: - |")
	assert.Contains(t, md, "| engine | running | false | 0 | false |  |")

	assert.Contains(t, SnapshotsMarkdown("empty", nil), "_No coordinators._")
}

func TestStateLabel(t *testing.T) {
	assert.Equal(t, "-", StateLabel(domain.StateUnset))
	assert.Contains(t, StateLabel(domain.StateRunning), "running")
	assert.Equal(t, "bogus", StateLabel("bogus"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "v")
	assert.Greater(t, strings.Count(buf.String(), "\n"), 5)
}

func TestNewRenderer_NotATerminal(t *testing.T) {
	render := NewRenderer()
	out, err := render("# title")
	assert.NoError(t, err)
	assert.Contains(t, out, "title")
}
