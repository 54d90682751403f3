package reasoning

import (
	"context"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

// HierarchyReasoner answers SUBCLASS_OF and INSTANCE_OF questions by
// delegating to the Traversal Engine with the matching edge type.
type HierarchyReasoner struct {
	traversal *Traversal
}

// NewHierarchyReasoner builds a HierarchyReasoner over the given Traversal
// Engine.
func NewHierarchyReasoner(traversal *Traversal) *HierarchyReasoner {
	return &HierarchyReasoner{traversal: traversal}
}

// Answer resolves "is head <relation> tail?" for relation ∈
// {SUBCLASS_OF, INSTANCE_OF}.
func (h *HierarchyReasoner) Answer(ctx context.Context, q Question, execCtx *ExecutionContext) (Result, Metrics) {
	var edgeType graph.EdgeType
	switch q.Type {
	case QuestionSubclassOf:
		edgeType = graph.SubclassOf
	case QuestionInstanceOf:
		edgeType = graph.InstanceOf
	default:
		return DontKnow, Metrics{}
	}

	return h.traversal.FindPath(ctx, q.Head, q.Tail, edgeType, execCtx)
}
