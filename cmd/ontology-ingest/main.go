// Package main provides a CLI tool for bulk-loading edges into the Graph
// Store from a CSV file, per the `add_edges` ingestion contract.
//
// Usage:
//
//	go run ./cmd/ontology-ingest edges.csv
//	cat edges.csv | go run ./cmd/ontology-ingest
//
// Environment Variables:
//
//	DATABASE_URL / POSTGRES_*  - Graph Store connection
//	NATS_URL                   - cache invalidation broadcast (optional)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cloud-princess/ontology-processor/internal/config"
	"github.com/cloud-princess/ontology-processor/internal/events"
	"github.com/cloud-princess/ontology-processor/internal/graph"
	"github.com/cloud-princess/ontology-processor/internal/ingestion"
)

func main() {
	cfg := config.MustLoad()
	logger := config.NewLogger(string(cfg.App.Environment), cfg.App.LogLevel)
	slog.SetDefault(logger.Logger)

	input, closeInput, err := openInput(os.Args[1:])
	if err != nil {
		logger.Logger.Error("failed to open input", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeInput()

	edges, rowErrors, err := ingestion.Ingest(input)
	if err != nil {
		logger.Logger.Error("ingestion failed", slog.Any("error", err))
		os.Exit(1)
	}
	for _, rowErr := range rowErrors {
		logger.Logger.Warn("dropped row", slog.String("error", rowErr.Error()))
	}
	if len(edges) == 0 {
		logger.Logger.Info("no edges to load")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := graph.NewPostgresStore(ctx, cfg.DatabaseDSN(), logger.Logger)
	if err != nil {
		logger.Logger.Error("failed to connect to graph store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.AddEdges(ctx, edges); err != nil {
		logger.Logger.Error("failed to add edges", slog.Any("error", err))
		os.Exit(1)
	}

	invalidator, err := events.NewInvalidator(events.Config{
		URL:           cfg.NATS.URL,
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
	}, logger.Logger)
	if err != nil {
		logger.Logger.Warn("cache invalidation broadcast unavailable", slog.Any("error", err))
	} else if err := invalidator.PublishInvalidation(ctx); err != nil {
		logger.Logger.Warn("failed to publish cache invalidation", slog.Any("error", err))
	}
	invalidator.Close()

	logger.Logger.Info("ingestion complete",
		slog.Int("edges_loaded", len(edges)),
		slog.Int("rows_dropped", len(rowErrors)),
	)
}

// openInput reads from the first CLI argument as a file path, or stdin
// when no argument is given.
func openInput(args []string) (*os.File, func(), error) {
	if len(args) == 0 {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("ontology-ingest: failed to open %q: %w", args[0], err)
	}
	return f, func() { f.Close() }, nil
}
