package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/kinetic/internal/presentation/graph"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/scene"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []scene.Node
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:     "Root Node Shape",
			nodes:    []scene.Node{{ID: "moon", Router: "sky"}},
			contains: []string{`moon(["moon <br/> router: sky"])`},
		},
		{
			name: "Child Shapes",
			nodes: []scene.Node{{
				ID:     "rocket",
				Router: "pad",
				Children: []scene.Node{
					{ID: "engine", KeepOnHide: true},
					{ID: "fin", Name: "Fin"},
				},
			}},
			contains: []string{
				`engine[["engine"]]`,
				`fin["Fin <br/> fin"]`,
				"rocket --> engine",
				"rocket --> fin",
			},
		},
		{
			name: "Ordering Labels",
			nodes: []scene.Node{{
				ID:                   "rocket",
				Router:               "pad",
				ExitAfterChildFinish: []string{"engine"},
				Children: []scene.Node{
					{ID: "engine", EnterAfterParentFinish: true},
					{ID: "smoke", EnterAfterParentStart: true},
				},
			}},
			contains: []string{
				`rocket -- "enters after finish, exit waits finish" --> engine`,
				`rocket -- "enters after start" --> smoke`,
			},
		},
		{
			name:     "ID Sanitization",
			nodes:    []scene.Node{{ID: "top-bar.left", Router: "r"}},
			contains: []string{`top_bar_left(["top-bar.left <br/> router: r"])`},
		},
		{
			name:  "Overlay",
			nodes: []scene.Node{{ID: "moon", Router: "sky"}},
			overlay: &graph.GraphOverlay{States: map[string]domain.LifecycleState{
				"moon":  domain.StateRunning,
				"ghost": "bogus",
			}},
			contains: []string{
				"classDef running",
				"class moon running;",
			},
			excludes: []string{"class ghost"},
		},
		{
			name:     "Empty Overlay",
			nodes:    []scene.Node{{ID: "moon", Router: "sky"}},
			overlay:  &graph.GraphOverlay{},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.nodes, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("GenerateMermaid() missing header:\n%v", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
		})
	}
}
