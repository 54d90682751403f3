package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AddEdgesAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.AddEdges(ctx, []Edge{
		NewEdge(SubclassOf, "dog", "mammal"),
		NewEdge(SubclassOf, "mammal", "animal"),
		NewEdge(HasAttribute, "mammal", "warm-blooded"),
	})
	require.NoError(t, err)

	out, err := s.Outgoing(ctx, "dog")
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "mammal", out[0].Tail)

	in, err := s.Incoming(ctx, "mammal")
	require.NoError(t, err)
	assert.Len(t, in, 1)
	assert.Equal(t, "dog", in[0].Head)

	exists, err := s.HasEntity(ctx, "animal")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.HasEntity(ctx, "fish")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_DuplicateEdgesDeduplicateLatestWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := NewEdge(SubclassOf, "dog", "mammal")
	first.Confidence = 0.5

	second := NewEdge(SubclassOf, "dog", "mammal")
	second.Confidence = 0.9
	second.Metadata = map[string]any{"source_row": 7}

	require.NoError(t, s.AddEdges(ctx, []Edge{first, second}))

	out, err := s.Outgoing(ctx, "dog")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].Confidence)
	assert.Equal(t, 7, out[0].Metadata["source_row"])
}

func TestMemoryStore_RejectsUnknownEdgeType(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.AddEdges(ctx, []Edge{NewEdge(EdgeType("FRIENDS_WITH"), "a", "b")})
	require.Error(t, err)

	var typeErr *ErrUnknownEdgeType
	assert.ErrorAs(t, err, &typeErr)

	exists, err := s.HasEntity(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists, "rejected batch must not partially apply")
}

func TestMemoryStore_SelfEdgeAllowedOnSubclassOf(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AddEdges(ctx, []Edge{NewEdge(SubclassOf, "entity", "entity")}))

	out, err := s.Outgoing(ctx, "entity")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
