package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/kinetic/pkg/adapters/mcp"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <scene>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts a scene as an MCP Server, letting AI agents show and hide routers and
inspect coordinator states as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		opts, cleanup, err := stageOptions(cmd, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		stage, built, err := buildScene(sc, motion.RealTime{}, nil, opts)
		if err != nil {
			return err
		}
		defer built.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("stage failed", "err", err)
			}
		}()
		defer stage.Stop()

		srv := mcp.NewServer(stage, mcp.WithLogger(logger), mcp.WithScene(sc))

		switch transport {
		case "stdio":
			// Keep logs off Stdout, it carries JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting kinetic MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting kinetic MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
