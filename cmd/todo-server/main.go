package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ixann-ui/ukk-todolist/internal/config"
	"github.com/ixann-ui/ukk-todolist/internal/db"
	"github.com/ixann-ui/ukk-todolist/internal/logging"
	"github.com/ixann-ui/ukk-todolist/internal/server"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:          "todo-server",
		Short:        "REST backend for the todo client",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, addr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides TODO_SERVER_ADDR and the config file)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath, config.Overrides{})
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		Prefix:          "todo-server",
		ReportTimestamp: true,
	})
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.New(cfg.ServerDBPath())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	logger.Info("starting", "version", version, "db", cfg.ServerDBPath())
	return server.New(database, server.Options{Logger: logger}).Run(ctx, addr)
}
