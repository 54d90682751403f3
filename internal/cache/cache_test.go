package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

func TestLRUCache_PutGetFlush(t *testing.T) {
	c, err := NewLRUCache(2)
	require.NoError(t, err)

	q := reasoning.Question{Type: reasoning.QuestionSubclassOf, Head: "dog", Tail: "animal"}

	_, ok := c.Get(q)
	assert.False(t, ok)

	c.Put(q, reasoning.Yes)
	result, ok := c.Get(q)
	assert.True(t, ok)
	assert.Equal(t, reasoning.Yes, result)

	c.Flush()
	_, ok = c.Get(q)
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRUCache(1)
	require.NoError(t, err)

	first := reasoning.Question{Type: reasoning.QuestionSubclassOf, Head: "dog", Tail: "animal"}
	second := reasoning.Question{Type: reasoning.QuestionSubclassOf, Head: "cat", Tail: "animal"}

	c.Put(first, reasoning.Yes)
	c.Put(second, reasoning.Yes)

	_, ok := c.Get(first)
	assert.False(t, ok, "capacity-1 cache must evict the older entry")

	_, ok = c.Get(second)
	assert.True(t, ok)
}

func TestParseRedisURL(t *testing.T) {
	cfg := ParseRedisURL("redis://:secret@localhost:6379/2")
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 2, cfg.DB)

	cfg = ParseRedisURL("localhost:6379")
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 0, cfg.DB)
}
