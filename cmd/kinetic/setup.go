package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/kinetic"
	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/adapters/file"
	"github.com/aretw0/kinetic/pkg/adapters/memory"
	"github.com/aretw0/kinetic/pkg/adapters/redis"
	"github.com/aretw0/kinetic/pkg/motion"
	"github.com/aretw0/kinetic/pkg/observability"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/spf13/cobra"
)

func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if format == "grouped" {
		return logging.NewGrouped(os.Stderr, level, false)
	}
	return logging.New(level)
}

// stageOptions picks the trace store and locker from the persistent flags.
// The returned cleanup releases backend connections.
func stageOptions(cmd *cobra.Command, logger *slog.Logger) ([]kinetic.Option, func(), error) {
	stageID, _ := cmd.Flags().GetString("stage-id")
	redisAddr, _ := cmd.Flags().GetString("redis")
	traceDir, _ := cmd.Flags().GetString("trace-dir")

	opts := []kinetic.Option{kinetic.WithLogger(logger)}
	if ctx := cmd.Context(); ctx != nil {
		opts = append(opts, kinetic.WithContext(ctx))
	}
	if stageID != "" {
		opts = append(opts, kinetic.WithID(stageID))
	}

	switch {
	case redisAddr != "" && traceDir != "":
		return nil, nil, fmt.Errorf("--redis and --trace-dir cannot be used together")
	case redisAddr != "":
		store := redis.New(redisAddr, os.Getenv("KINETIC_REDIS_PASSWORD"), 0)
		locker := redis.NewLocker(store.Client(), "kinetic:lock:")
		logger.Debug("using redis trace store", "address", redisAddr)
		opts = append(opts, kinetic.WithTraceStore(store), kinetic.WithLocker(locker))
		return opts, func() { _ = store.Close() }, nil
	case traceDir != "":
		logger.Debug("using file trace store", "dir", traceDir)
		opts = append(opts, kinetic.WithTraceStore(file.New(traceDir)), kinetic.WithLocker(memory.NewLocker()))
	default:
		opts = append(opts, kinetic.WithTraceStore(memory.NewStore()))
	}
	return opts, func() {}, nil
}

// buildScene creates a stage for sc, builds the scene on it and mounts it.
func buildScene(sc *scene.Scene, ticker motion.Ticker, metrics *observability.Metrics, opts []kinetic.Option) (*kinetic.Stage, *scene.Built, error) {
	if metrics != nil {
		opts = append(opts, kinetic.WithMetrics(metrics))
	}
	stage := kinetic.New(opts...)
	built, err := scene.Build(stage, sc, scene.WithTicker(ticker))
	if err != nil {
		return nil, nil, err
	}
	built.Mount()
	return stage, built, nil
}
