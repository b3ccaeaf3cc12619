package schema

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

const snapshotKey = "snapshot"

// Cache holds the process-wide snapshot. A zero ttl keeps it until Invalidate.
// Failed fetches are never cached.
type Cache struct {
	fetcher Fetcher
	mu      sync.Mutex
	entries *expirable.LRU[string, Snapshot]
}

func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		fetcher: fetcher,
		entries: expirable.NewLRU[string, Snapshot](1, nil, ttl),
	}
}

func (c *Cache) Get(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snapshot, ok := c.entries.Get(snapshotKey); ok {
		return snapshot, nil
	}
	snapshot, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	c.entries.Add(snapshotKey, snapshot)
	return snapshot, nil
}

func (c *Cache) Invalidate() {
	c.entries.Purge()
}

// Refresh drops the cached snapshot and fetches a new one.
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	c.Invalidate()
	return c.Get(ctx)
}
