package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/arenagame-go/internal/api"
	"github.com/mcoot/arenagame-go/internal/config"
	"github.com/mcoot/arenagame-go/internal/factory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "arena-server",
		Short: "Authoritative session server for the arena shooter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv(config.EnvPrefix + "_CONFIG")
			}
			return run(cmd.Context(), configPath)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (env: ARENA_CONFIG, default: ./arena.yaml if present)")

	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		return err
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	app, err := factory.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Start(ctx)
	server := api.NewServer(app.Router, cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("storage", cfg.Storage.Type),
		slog.Duration("tick", cfg.Game.TickInterval),
	)

	var runErr error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			runErr = err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			runErr = err
		}
	}

	if err := app.Stop(); err != nil {
		logger.Error("failed to release storage", slog.String("error", err.Error()))
		runErr = errors.Join(runErr, err)
	}

	logger.Info("server stopped")
	return runErr
}
