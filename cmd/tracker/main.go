package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jherrick/sattrack/internal/config"
	"github.com/jherrick/sattrack/internal/feed"
	"github.com/jherrick/sattrack/internal/store"
	"github.com/jherrick/sattrack/internal/version"
	"github.com/jherrick/sattrack/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("sattrack", version.String())
		return
	}

	// Set up structured logging
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	var cfg *config.TrackerConfig
	if *configPath != "" {
		var err error
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Default()
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"feed_url", cfg.Feed.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Position store and feed manager
	st := store.New()

	feedCfg := feed.ManagerConfig{
		URL:              cfg.Feed.URL,
		ReconnectDelay:   cfg.Feed.ReconnectDelay,
		HandshakeTimeout: cfg.Feed.HandshakeTimeout,
		StaleTimeout:     cfg.Feed.StaleTimeout,
		BufferSize:       cfg.Feed.BufferSize,
	}
	mgr := feed.NewManager(feedCfg, st, logger)

	// View server (started before the feed so browsers can attach while
	// the first connection is still being established)
	viewSrv := web.NewServer(st, mgr, cfg.Server.AllowedOrigins, logger)
	viewSrv.Start(ctx)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: viewSrv.Router(),
	}
	go func() {
		logger.Info("starting view server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("view server error", "error", err)
		}
	}()

	// Metrics listener
	metricsMux := http.NewServeMux()
	metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: metricsMux,
	}
	go func() {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Start the feed manager
	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start feed manager", "error", err)
		os.Exit(1)
	}

	logger.Info("tracker running",
		"instance_id", cfg.Instance.ID,
		"view_url", fmt.Sprintf("http://localhost:%d/", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	httpServer.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)

	if err := mgr.Stop(shutdownCtx); err != nil {
		logger.Error("feed manager stop error", "error", err)
	}

	logger.Info("tracker stopped")
}
