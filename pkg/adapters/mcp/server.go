package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/kinetic"
	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RouterResponse is the result of a router tool.
type RouterResponse struct {
	Router  string         `json:"router" jsonschema_description:"The router that was changed"`
	Trigger domain.Trigger `json:"trigger" jsonschema_description:"The trigger the router now emits"`
}

// CoordinatorsResponse lists coordinator snapshots.
type CoordinatorsResponse struct {
	Coordinators []lifecycle.Snapshot `json:"coordinators" jsonschema_description:"Every coordinator of the stage, in registration order"`
}

// Server exposes a stage as an MCP server, letting agents drive routers and
// inspect coordinators.
type Server struct {
	stage     *kinetic.Stage
	scene     *scene.Scene
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithScene exposes the scene as the kinetic://scene resource.
func WithScene(sc *scene.Scene) Option {
	return func(s *Server) {
		s.scene = sc
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(stage *kinetic.Stage, opts ...Option) *Server {
	s := &Server{
		stage:     stage,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("kinetic-mcp", strings.TrimSpace(kinetic.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("show_router",
		mcp.WithDescription("Make a router visible. Coordinators following it play their entry animation."),
		mcp.WithString("router", mcp.Required(), mcp.Description("Router name")),
		mcp.WithString("data", mcp.Description("Trigger data (optional)")),
		mcp.WithOutputSchema[RouterResponse](),
	), mcp.NewStructuredToolHandler(s.routerHandler(scene.ActionShow)))

	s.mcpServer.AddTool(mcp.NewTool("hide_router",
		mcp.WithDescription("Hide a router. Coordinators following it play their exit animation."),
		mcp.WithString("router", mcp.Required(), mcp.Description("Router name")),
		mcp.WithOutputSchema[RouterResponse](),
	), mcp.NewStructuredToolHandler(s.routerHandler(scene.ActionHide)))

	s.mcpServer.AddTool(mcp.NewTool("set_router",
		mcp.WithDescription("Replace a router's visibility and data."),
		mcp.WithString("router", mcp.Required(), mcp.Description("Router name")),
		mcp.WithBoolean("visible", mcp.Required(), mcp.Description("Whether the router is visible")),
		mcp.WithString("data", mcp.Description("Trigger data (optional)")),
		mcp.WithOutputSchema[RouterResponse](),
	), mcp.NewStructuredToolHandler(s.routerHandler(scene.ActionSet)))

	s.mcpServer.AddTool(mcp.NewTool("list_coordinators",
		mcp.WithDescription("List the lifecycle state of every coordinator."),
		mcp.WithString("state", mcp.Description("Only list coordinators in this lifecycle state")),
		mcp.WithOutputSchema[CoordinatorsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListCoordinators))

	s.mcpServer.AddTool(mcp.NewTool("get_coordinator",
		mcp.WithDescription("Get the lifecycle state of one coordinator."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Coordinator id")),
	), s.handleGetCoordinator)
}

func (s *Server) routerHandler(action string) func(context.Context, mcp.CallToolRequest, map[string]interface{}) (RouterResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RouterResponse, error) {
		step := scene.Step{Action: action}
		step.Router, _ = args["router"].(string)
		step.Visible, _ = args["visible"].(bool)
		if data, ok := args["data"].(string); ok && data != "" {
			step.Data = data
		}

		t, err := scene.Apply(s.stage.Routers(), step)
		if err != nil {
			s.logger.Warn("MCP router action failed", "router", step.Router, "action", action, "err", err)
			return RouterResponse{}, fmt.Errorf("%s failed: %w", action, err)
		}
		return RouterResponse{Router: step.Router, Trigger: t}, nil
	}
}

func (s *Server) handleListCoordinators(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CoordinatorsResponse, error) {
	snaps := s.stage.Snapshots()
	if v, _ := args["state"].(string); v != "" {
		state, err := domain.ParseLifecycleState(v)
		if err != nil {
			return CoordinatorsResponse{}, err
		}
		snaps = lifecycle.Filter(snaps, lifecycle.InState(state))
	}
	return CoordinatorsResponse{Coordinators: snaps}, nil
}

func (s *Server) handleGetCoordinator(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	snap, ok := s.stage.Snapshot(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("coordinator %q not found", id)), nil
	}
	jsonBytes, _ := json.Marshal(snap)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("kinetic://coordinators", "Coordinator States",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.stage.Snapshots())
		if err != nil {
			return nil, fmt.Errorf("failed to encode coordinators: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "kinetic://coordinators",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	if s.scene == nil {
		return
	}
	s.mcpServer.AddResource(mcp.NewResource("kinetic://scene", "Scene Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.scene)
		if err != nil {
			return nil, fmt.Errorf("failed to encode scene: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "kinetic://scene",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
