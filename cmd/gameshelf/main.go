// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the GameShelf catalog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameshelf/internal/cache"
	"gameshelf/internal/catalog"
	"gameshelf/internal/config"
	"gameshelf/internal/database"
	"gameshelf/internal/handlers"
	"gameshelf/internal/media"
	"gameshelf/internal/middleware"
	"gameshelf/internal/render"
	"gameshelf/internal/router"
	"gameshelf/internal/storage"
	"gameshelf/internal/store"
	"gameshelf/internal/upload"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey backs the summary cache and the rate limiter. Both degrade to
	// pass-through when it is unreachable.
	var (
		summaryCache catalog.SummaryCache
		counter      middleware.Counter
	)
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, caching and rate limiting disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		summaryCache = cache.NewSummaryCache(valkeyClient, cache.DefaultSummaryTTL)
		counter = middleware.NewValkeyCounter(valkeyClient, "gameshelf:ratelimit:")
	}

	// Object storage is optional; without it image uploads fail softly.
	var objects media.ObjectStore
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}
	mediaStore := media.New(objects, cfg.S3Prefix)

	uploads, err := upload.New(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		slog.Error("failed to prepare upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	service := catalog.New(
		store.NewCategoryStore(db),
		store.NewItemStore(db),
		mediaStore,
		summaryCache,
	)

	catalogHandlers := handlers.NewCatalog(renderer, service, uploads)
	limiter := middleware.NewRateLimiter(counter, cfg.RateLimitPerMinute, time.Minute)
	csp := middleware.ContentSecurityPolicy(mediaOrigin(cfg))

	r := router.New(catalogHandlers, limiter, csp)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// mediaOrigin returns the scheme and host images are served from, or ""
// when object storage is not configured.
func mediaOrigin(cfg *config.Config) string {
	raw := cfg.S3PublicURL
	if raw == "" {
		raw = cfg.S3Endpoint
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
