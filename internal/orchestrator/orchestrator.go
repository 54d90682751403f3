// Package orchestrator wires the parser, validator, and reasoning
// coordinator into the engine's single outward contract: process a
// question string, never raise to the caller.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/cloud-princess/ontology-processor/internal/graph"
	"github.com/cloud-princess/ontology-processor/internal/question"
	"github.com/cloud-princess/ontology-processor/internal/reasoning"
	"github.com/cloud-princess/ontology-processor/internal/validator"
)

// EmbedFunc produces the lookup embedding for an entity name that failed
// exact-match validation, handed to the Resolver for fuzzy suggestion. It
// is supplied by the caller because embedding generation is outside this
// engine's scope; when nil, missing-entity suggestions are skipped.
type EmbedFunc func(name string) pgvector.Vector

// Config holds the traversal bounds every query is executed under.
type Config struct {
	MaxDepth       int
	TimeoutSeconds float64
}

// Orchestrator is component I: the error firewall. Every failure mode —
// parse failure, unknown entity, unknown question type, storage error,
// timeout — is reified as a DONT_KNOW QueryResult; nothing it does panics
// or returns a Go error to its caller.
type Orchestrator struct {
	validator   *validator.EntityValidator
	coordinator *reasoning.Coordinator
	resolver    *graph.Resolver
	embed       EmbedFunc
	logger      *slog.Logger

	store          graph.Store
	maxDepth       int
	timeoutSeconds float64
}

// tracedConfidence mirrors the Reasoning Coordinator's successConfidence
// rule: 0.95 on any result a reasoning strategy produced, DontKnow included;
// parse and validation failures report 0.0 via dontKnow. Traced queries bypass
// the coordinator entirely (tracing a cache hit would yield no visitation
// frames), so the rule is duplicated here rather than shared.
const tracedConfidence = 0.95

// New builds an Orchestrator over a Graph Store, Result Cache, and logger,
// constructing and registering the Hierarchy and Attribute reasoning
// strategies exactly as the original ServiceFactory wires its
// ReasoningCoordinator.
func New(store graph.Store, cache reasoning.ResultCache, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	traversal := reasoning.NewTraversal(store)
	hierarchy := reasoning.NewHierarchyReasoner(traversal)
	attribute := reasoning.NewAttributeReasoner(store, hierarchy)
	coordinator := reasoning.NewCoordinator(hierarchy, attribute, cache, cfg.MaxDepth, cfg.TimeoutSeconds)

	return &Orchestrator{
		validator:      validator.New(store),
		coordinator:    coordinator,
		logger:         logger,
		store:          store,
		maxDepth:       cfg.MaxDepth,
		timeoutSeconds: cfg.TimeoutSeconds,
	}
}

// WithResolver attaches best-effort fuzzy entity suggestion to unresolved
// validation failures. It never affects YES/NO/DONT_KNOW correctness.
func (o *Orchestrator) WithResolver(resolver *graph.Resolver, embed EmbedFunc) *Orchestrator {
	o.resolver = resolver
	o.embed = embed
	return o
}

// Process is the engine's only outward contract: parse, validate,
// coordinate, respond. requestID is generated if empty.
func (o *Orchestrator) Process(ctx context.Context, questionText string, requestID string) reasoning.QueryResult {
	start := time.Now()
	if requestID == "" {
		requestID = uuid.NewString()
	}

	parsed, err := question.Parse(questionText)
	if err != nil {
		o.logger.Debug("parse failure", slog.String("question", questionText), slog.String("request_id", requestID))
		return dontKnow(requestID, start, fmt.Sprintf("could not parse question: %q", questionText))
	}

	ok, missing, err := o.validator.EntitiesExist(ctx, parsed.Head, parsed.Tail)
	if err != nil {
		o.logger.Error("storage error during validation", slog.String("error", err.Error()), slog.String("request_id", requestID))
		return dontKnow(requestID, start, "error: storage unavailable")
	}
	if !ok {
		return dontKnow(requestID, start, fmt.Sprintf("entities not found: %v%s", missing, o.suggestFor(ctx, missing)))
	}

	result := o.coordinator.Answer(ctx, reasoning.Question{
		Type:      parsed.Type,
		Head:      parsed.Head,
		Tail:      parsed.Tail,
		RequestID: requestID,
	})

	return result
}

// TracedAnswer answers a single already-parsed question while streaming
// every entity the Traversal Engine visits through visit. It bypasses the
// Result Cache and Coordinator entirely: a cache hit would produce no
// visitation frames at all, which would be misleading for an observability
// feature, so each traced query builds its own Hierarchy/Attribute reasoner
// pair over a fresh Traversal wired with visit. A request ID is generated
// since the websocket protocol carries no client-supplied one.
func (o *Orchestrator) TracedAnswer(ctx context.Context, parsed question.Parsed, visit reasoning.VisitFunc) reasoning.QueryResult {
	start := time.Now()
	requestID := uuid.NewString()

	ok, missing, err := o.validator.EntitiesExist(ctx, parsed.Head, parsed.Tail)
	if err != nil {
		o.logger.Error("storage error during traced validation", slog.String("error", err.Error()), slog.String("request_id", requestID))
		return dontKnow(requestID, start, "error: storage unavailable")
	}
	if !ok {
		return dontKnow(requestID, start, fmt.Sprintf("entities not found: %v%s", missing, o.suggestFor(ctx, missing)))
	}

	traversal := reasoning.NewTraversal(o.store).WithTrace(visit)
	hierarchy := reasoning.NewHierarchyReasoner(traversal)
	attribute := reasoning.NewAttributeReasoner(o.store, hierarchy)

	q := reasoning.Question{
		Type:      parsed.Type,
		Head:      graph.Entity(parsed.Head),
		Tail:      graph.Entity(parsed.Tail),
		RequestID: requestID,
	}
	execCtx := reasoning.NewExecutionContext(o.maxDepth, o.timeoutSeconds, requestID)

	var result reasoning.Result
	var metrics reasoning.Metrics
	switch parsed.Type {
	case reasoning.QuestionSubclassOf, reasoning.QuestionInstanceOf:
		result, metrics = hierarchy.Answer(ctx, q, execCtx)
	case reasoning.QuestionHasAttribute:
		result, metrics = attribute.Answer(ctx, q, execCtx)
	default:
		return dontKnow(requestID, start, "unknown question type")
	}

	// tracedConfidence is reported for any strategy that ran to
	// completion, regardless of the result value — a DONT_KNOW from an
	// exhausted open-world search is as confident a report as YES/NO.
	return reasoning.QueryResult{
		Result:          result,
		Confidence:      tracedConfidence,
		ExecutionTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		EntitiesVisited: metrics.EntitiesVisited,
		CacheHit:        false,
		DepthReached:    metrics.DepthReached,
		RequestID:       requestID,
	}
}

// suggestFor returns a ", did you mean: ..." suffix for the first missing
// entity with a close embedding match, or "" if no resolver is configured
// or nothing close enough is found.
func (o *Orchestrator) suggestFor(ctx context.Context, missing []string) string {
	if o.resolver == nil || o.embed == nil || len(missing) == 0 {
		return ""
	}
	suggestions, err := o.resolver.Suggest(ctx, o.embed(missing[0]), 1)
	if err != nil || len(suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", suggestions[0].Name)
}

func dontKnow(requestID string, start time.Time, explanation string) reasoning.QueryResult {
	return reasoning.QueryResult{
		Result:          reasoning.DontKnow,
		Confidence:      0.0,
		ExecutionTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		EntitiesVisited: 0,
		CacheHit:        false,
		DepthReached:    0,
		Explanation:     explanation,
		RequestID:       requestID,
	}
}
