// Package reasoning implements the ontology query engine: bounded typed
// traversal over the graph store, the hierarchy and attribute reasoning
// strategies built on it, and the coordinator that dispatches between them.
package reasoning

import (
	"time"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// QuestionType is the closed set of question shapes the coordinator can
// dispatch. It mirrors graph.EdgeType for SUBCLASS_OF/INSTANCE_OF but is
// kept distinct from HAS_ATTRIBUTE semantics at the reasoning layer.
type QuestionType string

const (
	QuestionSubclassOf   QuestionType = "SUBCLASS_OF"
	QuestionInstanceOf   QuestionType = "INSTANCE_OF"
	QuestionHasAttribute QuestionType = "HAS_ATTRIBUTE"
)

// Question is a fully-parsed, validated query triple.
type Question struct {
	Type      QuestionType
	Head      graph.Entity
	Tail      graph.Entity
	RequestID string
}

// Result is the closed three-valued answer the engine ever returns.
type Result string

const (
	Yes      Result = "YES"
	No       Result = "NO"
	DontKnow Result = "DONT_KNOW"
)

// ExecutionContext bounds a single traversal's cost: how many hops it may
// take and how long it may run before giving up with DONT_KNOW.
type ExecutionContext struct {
	MaxDepth       int
	TimeoutSeconds float64
	RequestID      string
	start          time.Time
}

// DefaultMaxDepth and DefaultTimeoutSeconds are the reference bounds from
// the traversal engine's configuration surface.
const (
	DefaultMaxDepth       = 64
	DefaultTimeoutSeconds = 5.0
)

// NewExecutionContext builds a bounded context starting its timeout clock
// now.
func NewExecutionContext(maxDepth int, timeoutSeconds float64, requestID string) *ExecutionContext {
	return &ExecutionContext{
		MaxDepth:       maxDepth,
		TimeoutSeconds: timeoutSeconds,
		RequestID:      requestID,
		start:          time.Now(),
	}
}

// Expired reports whether the wall-clock timeout has elapsed.
func (c *ExecutionContext) Expired() bool {
	return time.Since(c.start).Seconds() > c.TimeoutSeconds
}

// Metrics accumulates traversal cost for a single question, possibly across
// sub-queries (the attribute reasoner folds several hierarchy sub-queries'
// metrics into one).
type Metrics struct {
	EntitiesVisited int
	DepthReached    int
}

// Add folds another Metrics into m, taking the deeper of the two depths and
// summing visit counts — used when a reasoner issues multiple sub-queries.
func (m *Metrics) Add(other Metrics) {
	m.EntitiesVisited += other.EntitiesVisited
	if other.DepthReached > m.DepthReached {
		m.DepthReached = other.DepthReached
	}
}

// QueryResult is the engine's only outward contract, serialized verbatim to
// callers.
type QueryResult struct {
	Result          Result  `json:"result"`
	Confidence      float64 `json:"confidence"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
	EntitiesVisited int     `json:"entities_visited"`
	CacheHit        bool    `json:"cache_hit"`
	DepthReached    int     `json:"depth_reached"`
	Explanation     string  `json:"explanation,omitempty"`
	RequestID       string  `json:"request_id"`
}
