package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/scene"
)

// GraphOverlay contains live lifecycle states to visualize on the graph.
type GraphOverlay struct {
	States map[string]domain.LifecycleState
}

var stateStyles = []struct {
	state domain.LifecycleState
	style string
}{
	{domain.StateInitializing, "fill:#eceff1,stroke:#90a4ae,color:#000"},
	{domain.StateRunning, "fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000"},
	{domain.StateFinished, "fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000"},
	{domain.StateRestarting, "fill:#ffe0b2,stroke:#ef6c00,color:#000"},
	{domain.StateUnmounted, "fill:#fafafa,stroke:#bdbdbd,stroke-dasharray:4,color:#9e9e9e"},
}

// GenerateMermaid produces a Mermaid flowchart of a scene tree.
// Shapes:
// - Root (drives a router): ([Stadium])
// - Keeps its element when hidden: [[Subroutine]]
// - Default: [Rectangle]
// Edges go from parent to child and are labeled with the ordering constraints
// between them. Overlay states, if provided, are applied as classes.
func GenerateMermaid(nodes []scene.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range nodes {
		writeNode(&sb, n, true)
	}

	if overlay != nil && len(overlay.States) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		for _, s := range stateStyles {
			sb.WriteString(fmt.Sprintf("    classDef %s %s;\n", s.state, s.style))
		}

		ids := make([]string, 0, len(overlay.States))
		for id := range overlay.States {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if st := overlay.States[id]; st != domain.StateUnset && st.Valid() {
				sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(id), st))
			}
		}
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, n scene.Node, root bool) {
	safeID := sanitizeMermaidID(n.ID)

	opener, closer := "[", "]"
	switch {
	case root:
		opener, closer = "([", "])"
	case n.KeepOnHide:
		opener, closer = "[[", "]]"
	}

	label := n.ID
	if n.Name != "" && n.Name != n.ID {
		label = fmt.Sprintf("%s <br/> %s", n.Name, n.ID)
	}
	if n.Router != "" {
		label = fmt.Sprintf("%s <br/> router: %s", label, n.Router)
	}
	label = strings.ReplaceAll(label, "\"", "'")
	sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

	for _, c := range n.Children {
		writeNode(sb, c, false)

		var labels []string
		switch {
		case c.EnterAfterParentStart:
			labels = append(labels, "enters after start")
		case c.EnterAfterParentFinish:
			labels = append(labels, "enters after finish")
		}
		switch {
		case slices.Contains(n.ExitAfterChildFinish, c.ID):
			labels = append(labels, "exit waits finish")
		case slices.Contains(n.ExitAfterChildStart, c.ID):
			labels = append(labels, "exit waits start")
		}

		safeChild := sanitizeMermaidID(c.ID)
		if len(labels) == 0 {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, safeChild))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, strings.Join(labels, ", "), safeChild))
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
