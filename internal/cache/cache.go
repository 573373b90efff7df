// Package cache implements the TTL response cache for generated answers.
// Identical questions in the same language within the TTL window reuse the
// previous answer without a completion call.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cache is a bounded, TTL-based answer cache keyed by (question, language).
// Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

type entry struct {
	key      string
	answer   string
	storedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects a time source. Used by tests to simulate TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache holding at most maxSize entries for ttl each.
func New(ttl time.Duration, maxSize int, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for a question in a language. The question is
// lowercased and whitespace-collapsed first, so "Hola   Mundo" and
// "hola mundo" share an entry.
func Key(question, lang string) string {
	sum := sha256.Sum256([]byte(lang + "|" + normalize(question)))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Get returns the cached answer for (question, lang) if present and fresh.
// Expired entries are evicted on access.
func (c *Cache) Get(question, lang string) (string, bool) {
	key := Key(question, lang)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}
	ent := elem.Value.(*entry)
	if c.now().Sub(ent.storedAt) > c.ttl {
		c.removeLocked(elem)
		return "", false
	}
	c.order.MoveToFront(elem)
	return ent.answer, true
}

// Put stores an answer for (question, lang), evicting the least recently
// used entry when the cache is full.
func (c *Cache) Put(question, lang, answer string) {
	key := Key(question, lang)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.answer = answer
		ent.storedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}

	elem := c.order.PushFront(&entry{key: key, answer: answer, storedAt: c.now()})
	c.entries[key] = elem
}

// SweepExpired removes all entries past their TTL and returns the count
// removed. Called periodically by the maintenance job.
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.Sub(elem.Value.(*entry).storedAt) > c.ttl {
			c.removeLocked(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) removeLocked(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*entry).key)
}
