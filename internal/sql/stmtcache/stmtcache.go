// Package stmtcache keeps recently parsed statements so a client repeating the
// same statement text skips the lexer and parser.
package stmtcache

import (
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/tuannm99/novadoc/internal/sql/parser"
)

type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Cache is an LRU of parsed statements keyed by trimmed statement text.
// Parsed statements are never mutated after parsing, so a cached value can be
// handed to several callers. Safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	hits   uint64
	misses uint64
}

// New returns a cache holding at most size statements. size <= 0 disables caching.
func New(size int) *Cache {
	c := &Cache{}
	if size > 0 {
		c.lru = lru.New(size)
	}
	return c
}

// Parse returns the cached statement for input, parsing it on a miss.
// Failed parses are not cached.
func (c *Cache) Parse(input string) (parser.Statement, error) {
	if c == nil || c.lru == nil {
		return parser.Parse(input)
	}
	key := strings.TrimSpace(input)

	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return v.(parser.Statement), nil
	}
	c.misses++
	c.mu.Unlock()

	stmt, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lru.Add(key, stmt)
	c.mu.Unlock()
	return stmt, nil
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Hits: c.hits, Misses: c.misses}
	if c.lru != nil {
		s.Entries = c.lru.Len()
	}
	return s
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru != nil {
		c.lru.Clear()
	}
}
