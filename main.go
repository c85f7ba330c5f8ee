package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"task-signup/backend/internal/app"
	"task-signup/backend/internal/config"
	"task-signup/backend/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.Server.LogLevel, cfg.Server.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise application", "error", err)
		os.Exit(1)
	}

	log.Info("starting todo api", "addr", cfg.GetServerAddr(), "environment", cfg.Server.Environment)
	if err := application.Run(ctx); err != nil {
		log.Error("application stopped with error", "error", err)
		os.Exit(1)
	}
}
