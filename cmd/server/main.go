package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/notecanvas/server/internal/config"
	"codeberg.org/notecanvas/server/internal/logger"
)

// @title Note Canvas API
// @version 1.0
// @description Shared-state canvas and agent for generating Xiaohongshu notes
// @description
// @description Features:
// @description - Whole-state synchronization between canvas and agent over WebSockets
// @description - Note, tag and persona generation from product info and reference materials
// @description - Human confirmation of destructive agent actions

// @contact.name API Support
// @contact.url https://codeberg.org/notecanvas/server

func main() {
	flags, err := config.ParseServerFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	var envFiles []string
	if flags.EnvFile != "" {
		envFiles = append(envFiles, flags.EnvFile)
	}

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables(envFiles...)
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	cfg.Apply(flags)
	logger.SetDefault(logger.New(cfg.Environment))

	logger.Info("starting note canvas server", "environment", cfg.Environment)

	srv, err := NewServer(cfg)
	if err != nil {
		logger.FatalErr(err, "failed to create server")
	}

	// no write timeout: agent runs may wait minutes for a human decision
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalErr(err, "server failed to start")
		}
	}()

	go srv.hub.Run()

	// start snapshot flusher (memory → snapshot store)
	srv.flusher.Start()

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go srv.sessionMgr.Start(cleanupCtx, cleanupCheckInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cleanupCancel()

	logger.Info("shutting down server")

	// notify websocket clients and close connections first
	srv.hub.Shutdown()

	// stop flusher (flushes remaining snapshots before stopping)
	srv.flusher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "server forced to shutdown")
	}

	srv.snapshots.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown

	logger.Info("server stopped")
}
