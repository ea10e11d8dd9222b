// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package cache

import (
	"sync"
	"time"
)

// entry is a node of the recency list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with per-entry TTL.
// Get, Add and Remove are O(1); the recency order is a doubly-linked list
// with sentinel head and tail nodes.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	items    map[string]*entry[V]

	// head.next is the most recently used, tail.prev the least
	head *entry[V]
	tail *entry[V]

	hits   int64
	misses int64

	now func() time.Time
}

// NewLRU creates a cache holding at most capacity entries for ttl each.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1024 // Default capacity
	}
	if ttl <= 0 {
		ttl = time.Hour // Default TTL
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached value and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		return zero, false
	}

	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Add inserts or refreshes an entry, evicting the least recently used entry
// when the cache is full.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		return true
	}
	return false
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit/miss counts and current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
