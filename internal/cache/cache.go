// Package cache implements the fixed-capacity FIFO sample cache shared by
// the producer and consumer tasks.
package cache

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/sensor_node/internal/sample"
)

// Cache is a fixed-capacity ring of samples guarded by a single mutex.
// Push, PushFront, Pop and Len are the only access points; every call holds
// the lock for its full critical section, which is index arithmetic plus one
// sample copy. The backing array is allocated once in New; the hot path
// never allocates.
//
// A full cache rejects pushes instead of evicting the oldest entry, so loss
// is always visible to the caller and delivery order stays strictly FIFO.
type Cache struct {
	mu    sync.Mutex
	data  []sample.Sample
	write int // next slot to fill
	read  int // oldest occupied slot
	count int
}

// New creates an empty cache with the given capacity.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	return &Cache{data: make([]sample.Sample, capacity)}, nil
}

// Push appends a sample at the tail. It returns false, leaving the cache
// untouched, when the cache is full; the caller decides what to do with the
// rejected sample.
func (c *Cache) Push(s sample.Sample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == len(c.data) {
		return false
	}
	c.data[c.write] = s
	c.write = (c.write + 1) % len(c.data)
	c.count++
	return true
}

// PushFront inserts a sample at the head, so the next Pop returns it before
// anything already queued. Plain Push re-inserts a failed delivery at the
// tail, behind samples produced in the meantime; callers that need strict
// FIFO across delivery retries requeue with PushFront instead. Returns false
// when the cache is full.
func (c *Cache) PushFront(s sample.Sample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == len(c.data) {
		return false
	}
	c.read = (c.read - 1 + len(c.data)) % len(c.data)
	c.data[c.read] = s
	c.count++
	return true
}

// Pop removes and returns the oldest sample. The second result is false when
// the cache is empty.
func (c *Cache) Pop() (sample.Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return sample.Sample{}, false
	}
	s := c.data[c.read]
	c.read = (c.read + 1) % len(c.data)
	c.count--
	return s, true
}

// Len returns the number of samples currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Cap returns the configured capacity.
func (c *Cache) Cap() int {
	return len(c.data)
}
