package reasoning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

func fixtureStore(t *testing.T) graph.Store {
	t.Helper()
	s := graph.NewMemoryStore()
	edges := []graph.Edge{
		graph.NewEdge(graph.SubclassOf, "dog", "mammal"),
		graph.NewEdge(graph.SubclassOf, "mammal", "animal"),
		graph.NewEdge(graph.SubclassOf, "sea_animal", "animal"),
		graph.NewEdge(graph.SubclassOf, "killer_whale", "sea_animal"),
		graph.NewEdge(graph.SubclassOf, "pufferfish", "fish"),
		graph.NewEdge(graph.InstanceOf, "lassie", "dog"),
		graph.NewEdge(graph.InstanceOf, "luna", "killer_whale"),
		graph.NewEdge(graph.HasAttribute, "mammal", "warm-blooded"),
		graph.NewEdge(graph.HasAttribute, "fish", "aquatic"),
		graph.NewEdge(graph.MutuallyExclusive, "animal", "plant"),
	}
	require.NoError(t, s.AddEdges(context.Background(), edges))
	return s
}

func TestTraversal_Reflexivity(t *testing.T) {
	tr := NewTraversal(fixtureStore(t))
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, _ := tr.FindPath(context.Background(), "animal", "animal", graph.SubclassOf, execCtx)
	assert.Equal(t, Yes, result, "a class is its own subclass")

	result, _ = tr.FindPath(context.Background(), "lassie", "lassie", graph.InstanceOf, execCtx)
	assert.Equal(t, No, result, "an instance is not its own instance")
}

func TestTraversal_SubclassChain(t *testing.T) {
	tr := NewTraversal(fixtureStore(t))
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, metrics := tr.FindPath(context.Background(), "dog", "animal", graph.SubclassOf, execCtx)
	assert.Equal(t, Yes, result)
	assert.Positive(t, metrics.EntitiesVisited)
}

func TestTraversal_InstanceOfFirstHopThenSubclass(t *testing.T) {
	tr := NewTraversal(fixtureStore(t))
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, _ := tr.FindPath(context.Background(), "lassie", "animal", graph.InstanceOf, execCtx)
	assert.Equal(t, Yes, result, "instance-of hop then climbing the hierarchy must succeed")

	result, _ = tr.FindPath(context.Background(), "luna", "sea_animal", graph.InstanceOf, execCtx)
	assert.Equal(t, Yes, result)
}

func TestTraversal_MutualExclusivityShortCircuitsToNo(t *testing.T) {
	tr := NewTraversal(fixtureStore(t))
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, _ := tr.FindPath(context.Background(), "lassie", "plant", graph.InstanceOf, execCtx)
	assert.Equal(t, No, result)
}

func TestTraversal_NoPathIsDontKnowNotNo(t *testing.T) {
	tr := NewTraversal(fixtureStore(t))
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, _ := tr.FindPath(context.Background(), "pufferfish", "mammal", graph.SubclassOf, execCtx)
	assert.Equal(t, DontKnow, result)
}

func TestTraversal_DepthCapStopsExpansion(t *testing.T) {
	tr := NewTraversal(fixtureStore(t))
	execCtx := NewExecutionContext(0, DefaultTimeoutSeconds, "")

	result, metrics := tr.FindPath(context.Background(), "dog", "animal", graph.SubclassOf, execCtx)
	assert.Equal(t, DontKnow, result)
	assert.Equal(t, 0, metrics.DepthReached)
}
