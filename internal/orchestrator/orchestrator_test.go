package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-princess/ontology-processor/internal/cache"
	"github.com/cloud-princess/ontology-processor/internal/graph"
	"github.com/cloud-princess/ontology-processor/internal/question"
	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

// buildOntology recreates the reference ontology fixture used by the
// concrete scenario tests below: entity/animal/plant split by mutual
// exclusivity, dogs under Lassie, fish under pufferfish, and hemlock's
// poisonous attribute.
func buildOntology(t *testing.T) graph.Store {
	t.Helper()
	store := graph.NewMemoryStore()
	edges := []graph.Edge{
		graph.NewEdge(graph.SubclassOf, "animal", "entity"),
		graph.NewEdge(graph.SubclassOf, "plant", "entity"),
		graph.NewEdge(graph.SubclassOf, "mammal", "animal"),
		graph.NewEdge(graph.SubclassOf, "dog", "mammal"),
		graph.NewEdge(graph.SubclassOf, "fish", "animal"),
		graph.NewEdge(graph.SubclassOf, "pufferfish", "fish"),
		graph.NewEdge(graph.InstanceOf, "Lassie", "dog"),
		graph.NewEdge(graph.HasAttribute, "hemlock", "poisonous"),
		graph.NewEdge(graph.MutuallyExclusive, "animal", "plant"),
	}
	require.NoError(t, store.AddEdges(context.Background(), edges))
	return store
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	store := buildOntology(t)
	lru, err := cache.NewLRUCache(100)
	require.NoError(t, err)
	return New(store, lru, Config{MaxDepth: reasoning.DefaultMaxDepth, TimeoutSeconds: reasoning.DefaultTimeoutSeconds}, nil)
}

func TestOrchestrator_ConcreteScenarios(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		question string
		want     reasoning.Result
	}{
		{"direct attribute", "is hemlock considered to be poisonous?", reasoning.Yes},
		{"mutual exclusivity", "is Lassie a plant?", reasoning.No},
		{"no path no mutex", "is pufferfish a type of mammal?", reasoning.DontKnow},
		{"reflexive subclass", "is plant a type of plant?", reasoning.Yes},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := o.Process(ctx, tc.question, "")
			assert.Equal(t, tc.want, result.Result)
		})
	}
}

func TestOrchestrator_NonReflexiveInstanceOf(t *testing.T) {
	o := newTestOrchestrator(t)
	result := o.Process(context.Background(), "is entity an entity?", "")
	assert.Equal(t, reasoning.No, result.Result)
}

func TestOrchestrator_ParseFailureYieldsDontKnowWithExplanation(t *testing.T) {
	o := newTestOrchestrator(t)
	result := o.Process(context.Background(), "how are pufferfish and fish related?", "")
	assert.Equal(t, reasoning.DontKnow, result.Result)
	assert.Equal(t, 0.0, result.Confidence)
	assert.NotEmpty(t, result.Explanation)
}

func TestOrchestrator_UnknownEntityYieldsDontKnowWithZeroConfidence(t *testing.T) {
	o := newTestOrchestrator(t)
	result := o.Process(context.Background(), "is griffin a type of mammal?", "")
	assert.Equal(t, reasoning.DontKnow, result.Result)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Contains(t, result.Explanation, "griffin")
}

func TestOrchestrator_CacheIdempotence(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	first := o.Process(ctx, "is dog a type of animal?", "")
	assert.False(t, first.CacheHit)

	second := o.Process(ctx, "is dog a type of animal?", "")
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, 0, second.EntitiesVisited)
	assert.Equal(t, 1.0, second.Confidence)
}

func TestOrchestrator_RequestIDGeneratedWhenEmpty(t *testing.T) {
	o := newTestOrchestrator(t)
	result := o.Process(context.Background(), "is dog a type of animal?", "")
	assert.NotEmpty(t, result.RequestID)
}

func TestOrchestrator_TracedAnswer_VisitsEveryDequeuedEntity(t *testing.T) {
	o := newTestOrchestrator(t)
	parsed, err := question.Parse("is dog a type of animal?")
	require.NoError(t, err)

	var visited []string
	visit := func(entity graph.Entity, depth int, viaEdge graph.EdgeType) {
		visited = append(visited, string(entity))
	}

	result := o.TracedAnswer(context.Background(), parsed, visit)
	assert.Equal(t, reasoning.Yes, result.Result)
	assert.Equal(t, tracedConfidence, result.Confidence)
	assert.False(t, result.CacheHit)
	assert.Contains(t, visited, "dog")
}

func TestOrchestrator_TracedAnswer_NeverPopulatesOrReadsCache(t *testing.T) {
	o := newTestOrchestrator(t)
	parsed, err := question.Parse("is dog a type of animal?")
	require.NoError(t, err)
	noop := func(graph.Entity, int, graph.EdgeType) {}

	first := o.TracedAnswer(context.Background(), parsed, noop)
	second := o.TracedAnswer(context.Background(), parsed, noop)

	assert.False(t, first.CacheHit)
	assert.False(t, second.CacheHit)
	assert.Equal(t, first.EntitiesVisited, second.EntitiesVisited)
}

func TestOrchestrator_TracedAnswer_UnknownEntityYieldsDontKnow(t *testing.T) {
	o := newTestOrchestrator(t)
	parsed, err := question.Parse("is griffin a type of mammal?")
	require.NoError(t, err)
	noop := func(graph.Entity, int, graph.EdgeType) {}

	result := o.TracedAnswer(context.Background(), parsed, noop)
	assert.Equal(t, reasoning.DontKnow, result.Result)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Contains(t, result.Explanation, "griffin")
}

func TestOrchestrator_TracedAnswer_NoMutexPathYieldsDontKnowWithStrategyConfidence(t *testing.T) {
	o := newTestOrchestrator(t)
	parsed, err := question.Parse("is pufferfish a type of mammal?")
	require.NoError(t, err)
	noop := func(graph.Entity, int, graph.EdgeType) {}

	result := o.TracedAnswer(context.Background(), parsed, noop)
	assert.Equal(t, reasoning.DontKnow, result.Result)
	assert.Equal(t, tracedConfidence, result.Confidence)
}
