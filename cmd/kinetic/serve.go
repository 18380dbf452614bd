package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/kinetic"
	httpAdapter "github.com/aretw0/kinetic/pkg/adapters/http"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/observability"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <scene>",
	Short: "Serve a scene over HTTP",
	Long: `Builds the scene and exposes it over HTTP: routers can be driven with
POST /routers/{name}/{show|hide|set}, coordinator states are listed on /coordinators,
lifecycle events are streamed on /events (SSE) and metrics on /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		play, _ := cmd.Flags().GetBool("play")
		path := args[0]

		sc, err := scene.Load(path)
		if err != nil {
			return err
		}
		opts, cleanup, err := stageOptions(cmd, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		live := &liveStage{logger: logger}
		stage, built, err := buildScene(sc, motion.RealTime{}, metrics, opts)
		if err != nil {
			return err
		}
		live.start(ctx, stage, built, play)

		srv := httpAdapter.NewServer(stage,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithScene(sc),
			httpAdapter.WithGatherer(reg),
		)
		httpSrv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(srv),
			ReadHeaderTimeout: 5 * time.Second,
		}

		if watch {
			w := scene.NewWatcher(path, scene.WithWatchLogger(logger))
			go func() {
				err := w.Run(ctx, func(next *scene.Scene) {
					stage, built, err := buildScene(next, motion.RealTime{}, metrics, opts)
					if err != nil {
						logger.Warn("failed to rebuild scene", "err", err)
						return
					}
					live.start(ctx, stage, built, play)
					srv.Swap(stage, next)
				})
				if err != nil {
					logger.Error("watcher stopped", "err", err)
				}
			}()
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("serving scene", "address", httpSrv.Addr, "scene", sc.Name, "stage", stage.ID())
			serverErrors <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			live.stop()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				_ = httpSrv.Close()
			}
			live.stop()
			return nil
		}
	},
}

// liveStage runs the current stage and stops the previous one on reload.
type liveStage struct {
	logger *slog.Logger

	mu    sync.Mutex
	stage *kinetic.Stage
	built *scene.Built
}

func (l *liveStage) start(ctx context.Context, stage *kinetic.Stage, built *scene.Built, play bool) {
	l.mu.Lock()
	prev, prevBuilt := l.stage, l.built
	l.stage, l.built = stage, built
	l.mu.Unlock()

	if prev != nil {
		prevBuilt.Close()
		prev.Stop()
	}

	go func() {
		if err := stage.Run(ctx); err != nil && ctx.Err() == nil {
			l.logger.Error("stage failed", "stage", stage.ID(), "err", err)
		}
	}()
	if play {
		go func() {
			if err := built.Play(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("script failed", "err", err)
			}
		}()
	}
}

func (l *liveStage) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stage != nil {
		l.built.Close()
		l.stage.Stop()
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("watch", "w", false, "Rebuild the stage when the scene file changes")
	serveCmd.Flags().Bool("play", false, "Run the scene script once the stage is up")
}
