// Package main provides the waypoint CLI: resumable browser automation with
// human-in-the-loop checkpoints. Runs execute declarative YAML scripts; when
// a CAPTCHA or login wall interrupts one, the run is checkpointed and the
// sessions subcommands take over.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entrhq/waypoint/pkg/config"
	"github.com/entrhq/waypoint/pkg/hitl"
	"github.com/entrhq/waypoint/pkg/logging"
	"github.com/entrhq/waypoint/pkg/store"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "waypoint",
	Short:         "Resumable browser automation with human-in-the-loop checkpoints",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: built-in defaults)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runtime bundles the shared dependencies every subcommand needs.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.RedisStore
	manager *hitl.Manager
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	st, err := store.NewRedisStore(cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		manager: hitl.NewManager(st, logger),
	}, nil
}

func (r *runtime) close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = r.logger.Sync()
}
