package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Default pool configuration values.
const (
	DefaultMaxConns         = 25
	DefaultMinConns         = 5
	DefaultMaxConnLifetime  = 5 * time.Minute
	DefaultMaxConnIdleTime  = 1 * time.Minute
	DefaultHealthCheckPeriod = 1 * time.Minute
)

// PoolConfig holds configuration for the PostgreSQL connection pool backing
// PostgresStore.
type PoolConfig struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	Logger            *slog.Logger
}

// PostgresStore is the persistent Graph Store, backing AddEdges/Outgoing/
// Incoming/HasEntity with the `entities`/`edges` schema. It implements the
// same Store interface as MemoryStore, so the reasoning engine is
// storage-agnostic.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates a Graph Store backed by PostgreSQL with default
// pool settings.
func NewPostgresStore(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	return NewPostgresStoreWithConfig(ctx, &PoolConfig{
		DSN:               dsn,
		MaxConns:          DefaultMaxConns,
		MinConns:          DefaultMinConns,
		MaxConnLifetime:   DefaultMaxConnLifetime,
		MaxConnIdleTime:   DefaultMaxConnIdleTime,
		HealthCheckPeriod: DefaultHealthCheckPeriod,
		Logger:            logger,
	})
}

// NewPostgresStoreWithConfig creates a Graph Store backed by PostgreSQL with
// custom pool settings.
func NewPostgresStoreWithConfig(ctx context.Context, cfg *PoolConfig) (*PostgresStore, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, fmt.Errorf("graph: DSN is required")
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.MinConns == 0 {
		cfg.MinConns = DefaultMinConns
	}
	if cfg.MaxConnLifetime == 0 {
		cfg.MaxConnLifetime = DefaultMaxConnLifetime
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = DefaultMaxConnIdleTime
	}
	if cfg.HealthCheckPeriod == 0 {
		cfg.HealthCheckPeriod = DefaultHealthCheckPeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to parse DSN: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("graph: failed to ping database: %w", err)
	}

	cfg.Logger.Info("graph store connection pool created",
		slog.Int("max_conns", int(cfg.MaxConns)),
		slog.Int("min_conns", int(cfg.MinConns)),
	)

	return &PostgresStore{pool: pool, logger: cfg.Logger}, nil
}

// Pool exposes the underlying connection pool for collaborators that query
// outside the Store interface, such as the fuzzy-match Resolver.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Debug("graph store connection pool closed")
	}
}

// HealthCheck verifies the database connection is reachable.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("graph: health check failed: %w", err)
	}
	return nil
}

// AddEdges upserts edges inside a single transaction; duplicate
// (edge_type, head_entity, tail_entity) triples have the latest write win
// on confidence/metadata, mirroring MemoryStore's in-process semantics.
func (s *PostgresStore) AddEdges(ctx context.Context, edges []Edge) error {
	for _, e := range edges {
		if !e.Type.Valid() {
			return &ErrUnknownEdgeType{Type: e.Type}
		}
	}
	if len(edges) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("graph: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range edges {
		batch.Queue(
			`INSERT INTO entities (name) VALUES ($1), ($2)
			 ON CONFLICT (name) DO NOTHING`,
			e.Head, e.Tail,
		)
		batch.Queue(
			`INSERT INTO edges (edge_type, head_entity, tail_entity, confidence, metadata)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (edge_type, head_entity, tail_entity)
			 DO UPDATE SET confidence = EXCLUDED.confidence, metadata = EXCLUDED.metadata`,
			string(e.Type), e.Head, e.Tail, e.Confidence, e.Metadata,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range edges {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("graph: failed to upsert entity: %w", err)
		}
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("graph: failed to upsert edge: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("graph: failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("graph: failed to commit transaction: %w", err)
	}
	return nil
}

// Outgoing returns every edge with the given head.
func (s *PostgresStore) Outgoing(ctx context.Context, head Entity) ([]Edge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT edge_type, head_entity, tail_entity, confidence, metadata
		 FROM edges WHERE head_entity = $1`, head)
	if err != nil {
		return nil, fmt.Errorf("graph: outgoing query failed: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// Incoming returns every edge with the given tail.
func (s *PostgresStore) Incoming(ctx context.Context, tail Entity) ([]Edge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT edge_type, head_entity, tail_entity, confidence, metadata
		 FROM edges WHERE tail_entity = $1`, tail)
	if err != nil {
		return nil, fmt.Errorf("graph: incoming query failed: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// HasEntity reports whether name appears as any head or tail.
func (s *PostgresStore) HasEntity(ctx context.Context, name Entity) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM entities WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("graph: has_entity query failed: %w", err)
	}
	return exists, nil
}

func scanEdges(rows pgx.Rows) ([]Edge, error) {
	var edges []Edge
	for rows.Next() {
		var e Edge
		var edgeType string
		if err := rows.Scan(&edgeType, &e.Head, &e.Tail, &e.Confidence, &e.Metadata); err != nil {
			return nil, fmt.Errorf("graph: failed to scan edge row: %w", err)
		}
		e.Type = EdgeType(edgeType)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: row iteration error: %w", err)
	}
	return edges, nil
}

var _ Store = (*PostgresStore)(nil)
