package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/simplest-networking/internal/app"
	"github.com/samvad-hq/simplest-networking/internal/config"
	"github.com/samvad-hq/simplest-networking/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "netplay failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("netplay starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	playground, err := app.NewPlayground(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize playground", "error", err)
		return err
	}

	if _, err := playground.Run(ctx); err != nil {
		return fmt.Errorf("playground run: %w", err)
	}

	return nil
}
