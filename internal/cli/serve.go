// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/config"
	"github.com/jeranaias/astrid-tui/internal/logging"
	"github.com/jeranaias/astrid-tui/internal/server"
)

const shutdownTimeout = 5 * time.Second

// ServerOptions maps the configuration onto server options.
func ServerOptions(cfg *config.Config, logger *zap.Logger) server.Options {
	return server.Options{
		Addr:          cfg.ListenAddr(),
		ThinkingDelay: cfg.ThinkingDelay(),
		RateLimit:     cfg.Server.RateLimit,
		RateBurst:     cfg.Server.RateBurst,
		Logger:        logger,
	}
}

// HandleServe runs the backend until SIGINT or SIGTERM.
func HandleServe(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Sink: logging.SinkStderr})
	if err != nil {
		return &ConfigError{Err: err}
	}
	defer logger.Sync() //nolint:errcheck

	server.Version = Version
	srv := server.New(ServerOptions(cfg, logger))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
