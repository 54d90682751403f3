// Package cache provides the Result Cache backends for the reasoning
// engine: a bounded in-process LRU and a distributed Redis-backed
// alternative behind the same interface.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

// LRUCache is the default, in-process Result Cache: a bounded LRU keyed by
// (question_type, head, tail). It is the reference eviction policy
// component G names.
type LRUCache struct {
	inner *lru.Cache[key, reasoning.Result]
}

type key struct {
	qtype reasoning.QuestionType
	head  string
	tail  string
}

// NewLRUCache builds an LRUCache with the given capacity.
func NewLRUCache(capacity int) (*LRUCache, error) {
	inner, err := lru.New[key, reasoning.Result](capacity)
	if err != nil {
		return nil, fmt.Errorf("cache: building LRU: %w", err)
	}
	return &LRUCache{inner: inner}, nil
}

// Get returns the cached Result for q, if present.
func (c *LRUCache) Get(q reasoning.Question) (reasoning.Result, bool) {
	return c.inner.Get(toKey(q))
}

// Put stores the Result for q, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *LRUCache) Put(q reasoning.Question, r reasoning.Result) {
	c.inner.Add(toKey(q), r)
}

// Flush discards every cached entry. Called wholesale on any graph
// mutation, since the engine does not support partial invalidation.
func (c *LRUCache) Flush() {
	c.inner.Purge()
}

func toKey(q reasoning.Question) key {
	return key{qtype: q.Type, head: q.Head, tail: q.Tail}
}

var _ reasoning.ResultCache = (*LRUCache)(nil)
