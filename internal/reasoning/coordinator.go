package reasoning

import (
	"context"
	"time"
)

// strategy is the per-question-type reasoning function signature: the
// tagged-variant dispatch design.md calls for, closed over exactly three
// known QuestionTypes.
type strategy func(ctx context.Context, q Question, execCtx *ExecutionContext) (Result, Metrics)

// successConfidence is the hardcoded confidence reported on any result a
// reasoning strategy produced. The reference implementation never combines edge confidences
// along a path; this is preserved even though it is a known-suspect
// placeholder.
const successConfidence = 0.95

// ResultCache is the Result Cache contract (component G): memoizes
// (question_type, head, tail) -> Result.
type ResultCache interface {
	Get(q Question) (Result, bool)
	Put(q Question, r Result)
}

// Coordinator dispatches a validated Question to the matching reasoning
// strategy, consulting and populating the Result Cache around it, and
// reports execution metrics as a QueryResult.
type Coordinator struct {
	strategies map[QuestionType]strategy
	cache      ResultCache
	maxDepth   int
	timeout    float64
}

// NewCoordinator builds a Coordinator wiring the Hierarchy and Attribute
// reasoners into the strategy table.
func NewCoordinator(hierarchy *HierarchyReasoner, attribute *AttributeReasoner, cache ResultCache, maxDepth int, timeoutSeconds float64) *Coordinator {
	c := &Coordinator{
		cache:    cache,
		maxDepth: maxDepth,
		timeout:  timeoutSeconds,
	}
	c.strategies = map[QuestionType]strategy{
		QuestionSubclassOf:   hierarchy.Answer,
		QuestionInstanceOf:   hierarchy.Answer,
		QuestionHasAttribute: attribute.Answer,
	}
	return c
}

// Answer resolves a Question to a QueryResult: cache lookup, strategy
// dispatch, cache population, metrics.
func (c *Coordinator) Answer(ctx context.Context, q Question) QueryResult {
	start := time.Now()

	if c.cache != nil {
		if cached, ok := c.cache.Get(q); ok {
			return QueryResult{
				Result:          cached,
				Confidence:      1.0,
				ExecutionTimeMS: elapsedMS(start),
				EntitiesVisited: 0,
				CacheHit:        true,
				DepthReached:    0,
				RequestID:       q.RequestID,
			}
		}
	}

	strat, ok := c.strategies[q.Type]
	if !ok {
		return QueryResult{
			Result:          DontKnow,
			Confidence:      0.0,
			ExecutionTimeMS: elapsedMS(start),
			CacheHit:        false,
			Explanation:     "unknown question type",
			RequestID:       q.RequestID,
		}
	}

	execCtx := NewExecutionContext(c.maxDepth, c.timeout, q.RequestID)
	result, metrics := strat(ctx, q, execCtx)

	if c.cache != nil {
		c.cache.Put(q, result)
	}

	// successConfidence is reported for any strategy that ran to
	// completion, regardless of the result value — DONT_KNOW from an
	// exhausted open-world search is as confident a report as YES/NO.
	// 0.0 is reserved for the pre-strategy short-circuits above (a cache
	// hit aside, which reports 1.0, and unknown question type).
	return QueryResult{
		Result:          result,
		Confidence:      successConfidence,
		ExecutionTimeMS: elapsedMS(start),
		EntitiesVisited: metrics.EntitiesVisited,
		CacheHit:        false,
		DepthReached:    metrics.DepthReached,
		RequestID:       q.RequestID,
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
