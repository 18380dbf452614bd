package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/kinetic"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *kinetic.Stage) {
	t.Helper()
	sc, err := scene.Parse([]byte(`
routers: [{name: moon}]
nodes:
  - id: moon
    router: moon
    when: [{animation: {kind: instant, value: 1}}]
`))
	require.NoError(t, err)

	stage := kinetic.New()
	built, err := scene.Build(stage, sc, scene.WithTicker(motion.Instantly{}))
	require.NoError(t, err)
	built.Mount()
	require.NoError(t, stage.Flush())
	return NewServer(stage, WithScene(sc)), stage
}

func TestRouterTools(t *testing.T) {
	s, stage := newTestServer(t)
	ctx := context.Background()

	resp, err := s.routerHandler(scene.ActionShow)(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"router": "moon",
		"data":   "full",
	})
	require.NoError(t, err)
	assert.Equal(t, "moon", resp.Router)
	assert.True(t, resp.Trigger.Visible)
	assert.Equal(t, "full", resp.Trigger.Data)
	require.NoError(t, stage.Flush())

	list, err := s.handleListCoordinators(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, list.Coordinators, 1)
	assert.Equal(t, domain.StateFinished, list.Coordinators[0].Current)

	resp, err = s.routerHandler(scene.ActionSet)(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"router":  "moon",
		"visible": false,
	})
	require.NoError(t, err)
	assert.False(t, resp.Trigger.Visible)
	assert.Nil(t, resp.Trigger.Data)

	_, err = s.routerHandler(scene.ActionHide)(ctx, mcp.CallToolRequest{}, map[string]interface{}{"router": "sun"})
	assert.ErrorIs(t, err, domain.ErrRouterNotFound)
}

func TestListCoordinators_StateFilter(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	list, err := s.handleListCoordinators(ctx, mcp.CallToolRequest{}, map[string]interface{}{"state": "unmounted"})
	require.NoError(t, err)
	require.Len(t, list.Coordinators, 1)
	assert.Equal(t, "moon", list.Coordinators[0].ID)

	list, err = s.handleListCoordinators(ctx, mcp.CallToolRequest{}, map[string]interface{}{"state": "running"})
	require.NoError(t, err)
	assert.Empty(t, list.Coordinators)

	_, err = s.handleListCoordinators(ctx, mcp.CallToolRequest{}, map[string]interface{}{"state": "paused"})
	assert.Error(t, err)
}

func TestGetCoordinator(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"id": "moon"}
	res, err := s.handleGetCoordinator(ctx, req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var snap lifecycle.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text.Text), &snap))
	assert.Equal(t, "moon", snap.ID)
	assert.Equal(t, domain.StateUnmounted, snap.Current)

	req.Params.Arguments = map[string]any{"id": "sun"}
	res, err = s.handleGetCoordinator(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
