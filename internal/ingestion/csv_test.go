package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-princess/ontology-processor/internal/graph"
)

func TestIngest_HeaderOrderIndependentAndDefaultsConfidence(t *testing.T) {
	csv := "Tail Entity,Edge Type,Head Entity\n" +
		"mammal,SUBCLASS_OF,dog\n"

	edges, rowErrs, err := Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, edges, 1)
	assert.Equal(t, graph.SubclassOf, edges[0].Type)
	assert.Equal(t, "dog", edges[0].Head)
	assert.Equal(t, "mammal", edges[0].Tail)
	assert.Equal(t, 1.0, edges[0].Confidence)
}

func TestIngest_UnknownEdgeTypeDropsRowNotBatch(t *testing.T) {
	csv := "Edge Type,Head Entity,Tail Entity\n" +
		"SUBCLASS_OF,dog,mammal\n" +
		"FRIENDS_WITH,dog,cat\n" +
		"HAS_ATTRIBUTE,mammal,warm-blooded\n"

	edges, rowErrs, err := Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rowErrs, 1)
	assert.Equal(t, 3, rowErrs[0].Row)
	require.Len(t, edges, 2)
}

func TestIngest_ExplicitConfidence(t *testing.T) {
	csv := "Edge Type,Head Entity,Tail Entity,Confidence\n" +
		"SUBCLASS_OF,dog,mammal,0.5\n"

	edges, rowErrs, err := Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, edges, 1)
	assert.Equal(t, 0.5, edges[0].Confidence)
}

func TestIngest_MissingRequiredColumn(t *testing.T) {
	csv := "Edge Type,Head Entity\nSUBCLASS_OF,dog\n"
	_, _, err := Ingest(strings.NewReader(csv))
	assert.Error(t, err)
}
