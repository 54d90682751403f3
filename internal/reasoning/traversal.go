package reasoning

import (
	"context"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// Traversal is the bounded typed BFS engine (component D): it walks the
// graph store one edge type at a time, honoring the reflexivity rules and
// the mutual-exclusivity short-circuit, and never runs past ExecutionContext's
// depth or timeout bounds.
type Traversal struct {
	store graph.Store
	trace VisitFunc
}

// VisitFunc observes a single BFS visitation: the entity being expanded,
// its depth from start, and the edge type accepted to reach it (empty for
// the start entity itself). Used only to stream traversal observability
// frames; it never influences the traversal's outcome.
type VisitFunc func(entity graph.Entity, depth int, edgeType graph.EdgeType)

// NewTraversal builds a Traversal over the given Graph Store.
func NewTraversal(store graph.Store) *Traversal {
	return &Traversal{store: store}
}

// WithTrace attaches a visitor invoked for every entity the BFS dequeues,
// for live observability of a single query's traversal. Returns t for
// chaining with NewTraversal.
func (t *Traversal) WithTrace(trace VisitFunc) *Traversal {
	t.trace = trace
	return t
}

// queueItem is a single pending BFS frontier entry.
type queueItem struct {
	entity  graph.Entity
	depth   int
	viaEdge graph.EdgeType
}

// FindPath answers "is there a path from start to target along edgeType,
// subject to the first-hop INSTANCE_OF special case?" It is the single
// entry point the Hierarchy Reasoner and Attribute Reasoner both use.
//
// The edgeType parameter names which edge the caller is ultimately asking
// about (SUBCLASS_OF or INSTANCE_OF); it governs both the reflexivity rule
// and whether the first hop out of start may accept an INSTANCE_OF edge.
func (t *Traversal) FindPath(ctx context.Context, start, target graph.Entity, edgeType graph.EdgeType, execCtx *ExecutionContext) (Result, Metrics) {
	if start == target {
		if edgeType == graph.SubclassOf {
			return Yes, Metrics{EntitiesVisited: 0, DepthReached: 0}
		}
		return No, Metrics{EntitiesVisited: 0, DepthReached: 0}
	}

	queue := []queueItem{{entity: start, depth: 0}}
	visited := map[graph.Entity]bool{start: true}
	firstIteration := true
	metrics := Metrics{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth > execCtx.MaxDepth || execCtx.Expired() {
			metrics.DepthReached = execCtx.MaxDepth
			return DontKnow, metrics
		}

		metrics.EntitiesVisited++
		metrics.DepthReached = current.depth
		if t.trace != nil {
			t.trace(current.entity, current.depth, current.viaEdge)
		}

		outgoing, err := t.store.Outgoing(ctx, current.entity)
		if err != nil {
			return DontKnow, metrics
		}

		for _, e := range outgoing {
			if e.Type == graph.MutuallyExclusive && e.Tail == target {
				return No, metrics
			}
		}

		firstHopWantsInstanceOf := firstIteration && edgeType == graph.InstanceOf
		firstIteration = false

		for _, e := range outgoing {
			var accepted bool
			if firstHopWantsInstanceOf {
				accepted = e.Type == graph.InstanceOf
			} else {
				accepted = e.Type == graph.SubclassOf
			}
			if !accepted {
				continue
			}

			if e.Tail == target {
				return Yes, metrics
			}

			if !visited[e.Tail] {
				visited[e.Tail] = true
				queue = append(queue, queueItem{entity: e.Tail, depth: current.depth + 1, viaEdge: e.Type})
			}
		}
	}

	return DontKnow, metrics
}
