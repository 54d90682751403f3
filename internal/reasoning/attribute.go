package reasoning

import (
	"context"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// AttributeReasoner answers HAS_ATTRIBUTE questions: direct lookup against
// the set of entities known to carry the attribute, then delegation to the
// Hierarchy Reasoner to walk head's ancestors. It never asks the reverse
// question (whether the attribute applies to a superclass of itself) —
// attributes inherit downward only.
type AttributeReasoner struct {
	store     graph.Store
	hierarchy *HierarchyReasoner
}

// NewAttributeReasoner builds an AttributeReasoner over the given store and
// Hierarchy Reasoner. The dependency is one-directional: the hierarchy
// reasoner has no knowledge of attributes.
func NewAttributeReasoner(store graph.Store, hierarchy *HierarchyReasoner) *AttributeReasoner {
	return &AttributeReasoner{store: store, hierarchy: hierarchy}
}

// Answer resolves "does head have attribute tail?"
func (a *AttributeReasoner) Answer(ctx context.Context, q Question, execCtx *ExecutionContext) (Result, Metrics) {
	metrics := Metrics{}

	incoming, err := a.store.Incoming(ctx, q.Tail)
	if err != nil {
		return DontKnow, metrics
	}

	var attributeParents []graph.Entity
	for _, e := range incoming {
		if e.Type == graph.HasAttribute {
			if e.Head == q.Head {
				return Yes, metrics
			}
			attributeParents = append(attributeParents, e.Head)
		}
	}

	// Attributes inherit downward through both SUBCLASS_OF and INSTANCE_OF
	// chains (see TESTABLE PROPERTIES: attribute inheritance), so for each
	// attribute-bearing ancestor we ask the Hierarchy Reasoner whether head
	// reaches it either as a subclass or as an instance. The traversal
	// engine's own first-hop special case already limits the INSTANCE_OF
	// question to a single instance-of hop followed by class climbing, so
	// asking both never double-counts a pure subclass chain.
	for _, p := range attributeParents {
		subclassResult, subclassMetrics := a.hierarchy.Answer(ctx, Question{
			Type: QuestionSubclassOf,
			Head: q.Head,
			Tail: p,
		}, execCtx)
		metrics.Add(subclassMetrics)
		if subclassResult == Yes {
			return Yes, metrics
		}

		instanceResult, instanceMetrics := a.hierarchy.Answer(ctx, Question{
			Type: QuestionInstanceOf,
			Head: q.Head,
			Tail: p,
		}, execCtx)
		metrics.Add(instanceMetrics)
		if instanceResult == Yes {
			return Yes, metrics
		}
	}

	return DontKnow, metrics
}
