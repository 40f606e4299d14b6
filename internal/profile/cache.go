// Package profile caches subject enrichment documents fetched from the
// upstream profile service. The cache is display-layer convenience; nothing
// here participates in the trust decision.
package profile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"proofgate/internal/profile/metrics"
	"proofgate/pkg/domain"
)

type entry struct {
	doc       *Document
	fetchedAt time.Time
}

// Cache is a TTL cache with single-flight miss coalescing: concurrent
// lookups for the same key during a miss share one upstream fetch instead of
// stampeding the upstream service.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	metrics *metrics.Metrics

	mu      sync.RWMutex
	entries map[domain.SubjectKey]entry
	group   singleflight.Group

	now func() time.Time
}

// NewCache builds a cache over the given fetcher.
func NewCache(fetcher Fetcher, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		metrics: m,
		entries: make(map[domain.SubjectKey]entry),
		now:     time.Now,
	}
}

// Get returns the subject's document, fetching from upstream on a miss or
// stale entry. A failed fetch is returned to every waiting caller and leaves
// the cache untouched, so a later call retries.
func (c *Cache) Get(ctx context.Context, key domain.SubjectKey) (*Document, error) {
	if doc, ok := c.lookup(key); ok {
		c.metrics.IncrementHit()
		return doc, nil
	}
	c.metrics.IncrementMiss()

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// Re-check under the flight: a concurrent fetch may have landed
		// between the miss and this callback.
		if doc, ok := c.lookup(key); ok {
			return doc, nil
		}

		doc, err := c.fetcher.Fetch(ctx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{doc: doc, fetchedAt: c.now()}
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// Clear removes the given subjects, or every entry when called without
// arguments.
func (c *Cache) Clear(keys ...domain.SubjectKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(keys) == 0 {
		c.entries = make(map[domain.SubjectKey]entry)
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Len reports the number of cached entries. Stale entries are evicted on
// read, so this counts only entries that have not aged past the TTL or have
// not been read since they did.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key domain.SubjectKey) (*Document, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) >= c.ttl {
		c.evict(key, e.fetchedAt)
		return nil, false
	}
	return e.doc, true
}

// evict removes a stale entry unless a concurrent fetch already replaced it
// between the read and this write.
func (c *Cache) evict(key domain.SubjectKey, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[key]; ok && cur.fetchedAt.Equal(fetchedAt) {
		delete(c.entries, key)
	}
}
