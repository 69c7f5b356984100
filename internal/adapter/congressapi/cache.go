package congressapi

import (
	"context"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// TopicCounter returns per-state counts for an ideology topic.
type TopicCounter interface {
	TopicCounts(ctx context.Context, topic string) (domain.TopicCounts, error)
}

// CachedTopicCounter wraps a TopicCounter with an in-memory LRU cache keyed
// by topic.
type CachedTopicCounter struct {
	inner TopicCounter
	cache *lru.Cache[string, domain.TopicCounts]
}

// NewCachedTopicCounter creates a cache decorator around a topic counter.
// maxEntries below 1 is raised to 1.
func NewCachedTopicCounter(inner TopicCounter, maxEntries int) *CachedTopicCounter {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, domain.TopicCounts](max(maxEntries, 1))
	return &CachedTopicCounter{inner: inner, cache: cache}
}

func (c *CachedTopicCounter) TopicCounts(ctx context.Context, topic string) (domain.TopicCounts, error) {
	if result, ok := c.cache.Get(topic); ok {
		return result, nil
	}
	result, err := c.inner.TopicCounts(ctx, topic)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so pending topics are asked for again.
	if len(result.Counts) > 0 {
		c.cache.Add(topic, result)
	}
	return result, nil
}

// Len reports how many topics are cached.
func (c *CachedTopicCounter) Len() int { return c.cache.Len() }
