package reasoning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

func TestAttributeReasoner_DirectAndInheritedAttributes(t *testing.T) {
	store := fixtureStore(t)
	hierarchy := NewHierarchyReasoner(NewTraversal(store))
	attr := NewAttributeReasoner(store, hierarchy)
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, _ := attr.Answer(context.Background(), Question{Type: QuestionHasAttribute, Head: "mammal", Tail: "warm-blooded"}, execCtx)
	assert.Equal(t, Yes, result, "direct HAS_ATTRIBUTE edge")

	result, _ = attr.Answer(context.Background(), Question{Type: QuestionHasAttribute, Head: "dog", Tail: "warm-blooded"}, execCtx)
	assert.Equal(t, Yes, result, "inherited via SUBCLASS_OF chain")

	result, _ = attr.Answer(context.Background(), Question{Type: QuestionHasAttribute, Head: "lassie", Tail: "warm-blooded"}, execCtx)
	assert.Equal(t, Yes, result, "inherited via INSTANCE_OF then SUBCLASS_OF chain")

	result, _ = attr.Answer(context.Background(), Question{Type: QuestionHasAttribute, Head: "pufferfish", Tail: "warm-blooded"}, execCtx)
	assert.Equal(t, DontKnow, result, "pufferfish is a fish, not a mammal")
}

func TestAttributeReasoner_NeverInheritsUpward(t *testing.T) {
	store := graph.NewMemoryStore()
	edges := []graph.Edge{
		graph.NewEdge(graph.SubclassOf, "dog", "mammal"),
		graph.NewEdge(graph.HasAttribute, "dog", "loyal"),
	}
	_ = store.AddEdges(context.Background(), edges)

	hierarchy := NewHierarchyReasoner(NewTraversal(store))
	attr := NewAttributeReasoner(store, hierarchy)
	execCtx := NewExecutionContext(DefaultMaxDepth, DefaultTimeoutSeconds, "")

	result, _ := attr.Answer(context.Background(), Question{Type: QuestionHasAttribute, Head: "mammal", Tail: "loyal"}, execCtx)
	assert.Equal(t, DontKnow, result, "an attribute on a subclass must never propagate up to its superclass")
}
