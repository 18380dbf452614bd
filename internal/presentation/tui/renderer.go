package tui

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// When stdout is not a terminal, markdown is returned unchanged.
func NewRenderer() func(string) (string, error) {
	if !IsTerminal(os.Stdout) {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

var stateColors = map[domain.LifecycleState]string{
	domain.StateInitializing: "#94a3b8",
	domain.StateRunning:      "#facc15",
	domain.StateFinished:     "#4ade80",
	domain.StateRestarting:   "#fb923c",
	domain.StateUnmounted:    "#64748b",
}

// StateLabel returns s colored for the current terminal profile.
func StateLabel(s domain.LifecycleState) string {
	if s == domain.StateUnset {
		return "-"
	}
	color, ok := stateColors[s]
	if !ok {
		return s.String()
	}
	p := termenv.ColorProfile()
	return termenv.String(s.String()).Foreground(p.Color(color)).String()
}

// SnapshotsMarkdown renders coordinator snapshots as a markdown report.
func SnapshotsMarkdown(title string, snaps []lifecycle.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(snaps) == 0 {
		sb.WriteString("_No coordinators._\n")
		return sb.String()
	}

	sb.WriteString("| Coordinator | State | Visible | Actions | Attached | Children |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range snaps {
		name := s.ID
		if s.Name != "" && s.Name != s.ID {
			name = fmt.Sprintf("%s (%s)", s.Name, s.ID)
		}

		children := make([]string, 0, len(s.ChildStates))
		for _, id := range sortedKeys(s.ChildStates) {
			state := s.ChildStates[id]
			if state == domain.StateUnset {
				state = "-"
			}
			children = append(children, fmt.Sprintf("%s: %s", id, state))
		}

		fmt.Fprintf(&sb, "| %s | %s | %t | %d | %t | %s |\n",
			name, s.Current, s.Visible, s.ActionCount, s.Attached, strings.Join(children, ", "))
	}
	return sb.String()
}

func sortedKeys(m map[string]domain.LifecycleState) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
