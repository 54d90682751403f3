// Package main provides the entry point for the ontology query API server.
//
// The API server answers bounded YES/NO/DONT_KNOW questions over a typed
// knowledge graph stored in PostgreSQL, behind a Result Cache shared across
// instances via Redis and kept coherent by a NATS invalidation broadcast.
//
// Usage:
//
//	go run ./cmd/api
//
// Environment variables:
//
//	DATABASE_URL / POSTGRES_*  - Graph Store connection
//	REDIS_URL / REDIS_*        - distributed Result Cache (optional)
//	NATS_URL                   - cache invalidation broadcast (optional)
//	JWT_SECRET / JWT_ISSUER    - query API bearer token validation (optional)
//	SERVER_PORT                - API server port (default: 8080)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloud-princess/ontology-processor/internal/api"
	apimiddleware "github.com/cloud-princess/ontology-processor/internal/api/middleware"
	"github.com/cloud-princess/ontology-processor/internal/cache"
	"github.com/cloud-princess/ontology-processor/internal/config"
	"github.com/cloud-princess/ontology-processor/internal/events"
	"github.com/cloud-princess/ontology-processor/internal/graph"
	"github.com/cloud-princess/ontology-processor/internal/orchestrator"
	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(string(cfg.App.Environment), cfg.App.LogLevel)
	slog.SetDefault(logger.Logger)
	cfg.LogConfig(logger.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	store, resultCache, invalidator, err := initStorage(ctx, cfg, logger.Logger)
	if err != nil {
		logger.Logger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStorage(store, resultCache, invalidator, logger.Logger)

	if invalidator != nil {
		if flusher, ok := resultCache.(events.Flusher); ok {
			if err := invalidator.Listen(ctx, flusher); err != nil {
				logger.Logger.Error("failed to subscribe to cache invalidation", slog.Any("error", err))
			}
		}
	}

	// WithResolver is not called here: fuzzy suggestion needs an embedding
	// function for entity names, and no embedding model is wired into this
	// service. internal/graph.Resolver remains available for a caller that
	// supplies one (see orchestrator.EmbedFunc).
	orc := orchestrator.New(store, resultCache, orchestrator.Config{
		MaxDepth:       cfg.Graph.MaxDepth,
		TimeoutSeconds: cfg.Graph.TimeoutSeconds,
	}, logger.Logger)

	deps := &api.Dependencies{
		Orchestrator:   orc,
		Store:          store,
		Health:         store,
		Validator:      buildValidator(cfg),
		RateLimitCache: rateLimitCache(resultCache),
	}
	server := api.NewServer(cfg, logger.Logger, deps)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Logger.Error("server error", slog.Any("error", err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("server shutdown error", slog.Any("error", err))
	}

	logger.Logger.Info("API server stopped")
}

// initStorage wires the Graph Store, Result Cache backend, and optional
// cache-invalidation broadcast from configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*graph.PostgresStore, reasoning.ResultCache, *events.Invalidator, error) {
	store, err := graph.NewPostgresStore(ctx, cfg.DatabaseDSN(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("graph store: %w", err)
	}

	resultCache, err := initResultCache(cfg, logger)
	if err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("result cache: %w", err)
	}

	invalidator, err := events.NewInvalidator(events.Config{
		URL:           cfg.NATS.URL,
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
	}, logger)
	if err != nil {
		logger.Warn("cache invalidation broadcast unavailable, continuing without it", slog.Any("error", err))
	}

	return store, resultCache, invalidator, nil
}

// initResultCache prefers the distributed Redis backend when configured,
// falling back to the in-process LRU otherwise; both satisfy the same
// reasoning.ResultCache contract.
func initResultCache(cfg *config.Config, logger *slog.Logger) (reasoning.ResultCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	if cfg.Cache.RedisURL != "" || cfg.Cache.RedisHost != "" {
		redisCfg := cache.RedisConfig{Addr: fmt.Sprintf("%s:%d", cfg.Cache.RedisHost, cfg.Cache.RedisPort), Password: cfg.Cache.RedisPasswd, DB: cfg.Cache.RedisDB}
		if cfg.Cache.RedisURL != "" {
			redisCfg = cache.ParseRedisURL(cfg.Cache.RedisURL)
		}
		redisCache, err := cache.NewRedisCache(redisCfg, logger)
		if err != nil {
			logger.Warn("distributed result cache unavailable, falling back to in-process LRU", slog.Any("error", err))
		} else {
			return redisCache, nil
		}
	}

	return cache.NewLRUCache(cfg.Cache.Capacity)
}

// rateLimitCache shares the Result Cache's Redis connection with the
// RateLimit middleware stage when Redis backs the cache, so the query API
// doesn't open a second connection just to count requests. Any other
// Result Cache backend (the in-process LRU, or none) yields nil, which
// makes RateLimitMiddleware fall back to its own in-process counter.
func rateLimitCache(resultCache reasoning.ResultCache) apimiddleware.CacheClient {
	redisCache, ok := resultCache.(*cache.RedisCache)
	if !ok {
		return nil
	}
	return redisCache.RateLimitClient()
}

// buildValidator returns nil (auth disabled) when no JWT secret is
// configured, matching local-development convenience.
func buildValidator(cfg *config.Config) apimiddleware.TokenValidator {
	if cfg.Auth.JWTSecret == "" {
		return nil
	}
	return &apimiddleware.HMACValidator{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.JWTIssuer}
}

func closeStorage(store *graph.PostgresStore, resultCache reasoning.ResultCache, invalidator *events.Invalidator, logger *slog.Logger) {
	if closer, ok := resultCache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close result cache", slog.Any("error", err))
		}
	}
	if err := invalidator.Close(); err != nil {
		logger.Error("failed to close invalidator", slog.Any("error", err))
	}
	if store != nil {
		store.Close()
	}
}
