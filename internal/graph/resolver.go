package graph

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Suggestion is a best-effort nearest-known-entity match, surfaced only in
// an "entity not found" explanation. It never participates in answering a
// question — correctness of YES/NO/DONT_KNOW stays exact-match only.
type Suggestion struct {
	Name     Entity
	Distance float64
}

// Resolver performs fuzzy entity lookup over entity name embeddings using
// pgvector's cosine distance operator. It is a pure convenience layer on
// top of PostgresStore's exact-match entities table.
type Resolver struct {
	pool *pgxpool.Pool
}

// NewResolver wraps an existing pool for fuzzy entity resolution.
func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// Suggest returns up to limit entities whose stored embedding is nearest to
// the query embedding, ordered by ascending distance. A nil or empty result
// means no embedding has been recorded for unresolved entities yet.
func (r *Resolver) Suggest(ctx context.Context, query pgvector.Vector, limit int) ([]Suggestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, embedding <=> $1 AS distance
		 FROM entities
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("graph: suggest query failed: %w", err)
	}
	defer rows.Close()

	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.Name, &s.Distance); err != nil {
			return nil, fmt.Errorf("graph: failed to scan suggestion row: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: row iteration error: %w", err)
	}
	return suggestions, nil
}

// SetEmbedding stores or replaces the embedding recorded for an entity,
// creating the entity row if it does not exist yet, so that it becomes a
// fuzzy-resolution candidate. The CSV ingestion path does not call it.
func (r *Resolver) SetEmbedding(ctx context.Context, name Entity, embedding pgvector.Vector) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO entities (name, embedding) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET embedding = EXCLUDED.embedding`,
		name, embedding,
	)
	if err != nil {
		return fmt.Errorf("graph: failed to set embedding: %w", err)
	}
	return nil
}
