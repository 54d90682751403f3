// Package validator confirms that the endpoints of a parsed question are
// known to the Graph Store before reasoning is attempted.
package validator

import (
	"context"
	"fmt"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// EntityValidator is component C: it distinguishes open-world ignorance
// (an endpoint the store has never heard of) from a definitive reasoning
// outcome, which only the Traversal Engine may produce.
type EntityValidator struct {
	store graph.Store
}

// New builds an EntityValidator over the given Graph Store.
func New(store graph.Store) *EntityValidator {
	return &EntityValidator{store: store}
}

// EntitiesExist reports whether both head and tail are known entities. The
// returned missing slice names every absent endpoint, in (head, tail) order,
// for use in the orchestrator's explanation string.
func (v *EntityValidator) EntitiesExist(ctx context.Context, head, tail graph.Entity) (ok bool, missing []string, err error) {
	headExists, err := v.store.HasEntity(ctx, head)
	if err != nil {
		return false, nil, fmt.Errorf("validator: checking head: %w", err)
	}
	tailExists, err := v.store.HasEntity(ctx, tail)
	if err != nil {
		return false, nil, fmt.Errorf("validator: checking tail: %w", err)
	}

	if !headExists {
		missing = append(missing, head)
	}
	if !tailExists {
		missing = append(missing, tail)
	}

	return headExists && tailExists, missing, nil
}
