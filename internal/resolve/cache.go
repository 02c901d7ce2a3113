package resolve

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/sci/internal/debug"
)

// Cache is the process-wide symbol table. Shard selection hashes the
// base segment of the qualified name, so every candidate for a bare
// name lives in one shard and unqualified lookup stays a single-shard
// operation.
type Cache struct {
	shards   []*shard
	mask     uint64
	perShard int
	clock    atomic.Uint64
	stats    statCounters
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	byFile  map[string]map[string]struct{}
	byBase  map[string][]string
}

// NewCache builds a cache with the given total capacity spread over
// shardCount shards. shardCount must be a power of two; capacity below
// shardCount is raised to one entry per shard.
func NewCache(capacity, shardCount int) *Cache {
	if shardCount < 1 || shardCount&(shardCount-1) != 0 {
		shardCount = 16
	}
	perShard := capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}
	c := &Cache{
		shards:   make([]*shard, shardCount),
		mask:     uint64(shardCount - 1),
		perShard: perShard,
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			entries: make(map[string]*Entry),
			byFile:  make(map[string]map[string]struct{}),
			byBase:  make(map[string][]string),
		}
	}
	return c
}

func (c *Cache) shardFor(base string) *shard {
	return c.shards[xxhash.Sum64String(base)&c.mask]
}

// Insert adds or replaces one entry. Replacement keeps the old access
// history so a re-parsed hot symbol does not become an eviction target.
func (c *Cache) Insert(entry Entry) {
	base := baseName(entry.QualifiedName)
	s := c.shardFor(base)

	s.mu.Lock()
	c.insertLocked(s, base, entry)
	s.mu.Unlock()
	c.stats.insertions.Add(1)
}

func (c *Cache) insertLocked(s *shard, base string, entry Entry) {
	stored := entry
	if old, ok := s.entries[entry.QualifiedName]; ok {
		stored.lastAccessed = old.lastAccessed
		stored.accessCount = old.accessCount
		c.unindexLocked(s, old)
	} else {
		stored.lastAccessed = c.clock.Add(1)
	}
	s.entries[entry.QualifiedName] = &stored
	s.byBase[base] = append(s.byBase[base], entry.QualifiedName)
	if stored.FilePath != "" {
		names, ok := s.byFile[stored.FilePath]
		if !ok {
			names = make(map[string]struct{})
			s.byFile[stored.FilePath] = names
		}
		names[entry.QualifiedName] = struct{}{}
	}
	if len(s.entries) > c.perShard {
		c.evictLocked(s)
	}
}

func (c *Cache) unindexLocked(s *shard, e *Entry) {
	base := baseName(e.QualifiedName)
	candidates := s.byBase[base]
	for i, name := range candidates {
		if name == e.QualifiedName {
			s.byBase[base] = append(candidates[:i], candidates[i+1:]...)
			break
		}
	}
	if len(s.byBase[base]) == 0 {
		delete(s.byBase, base)
	}
	if names, ok := s.byFile[e.FilePath]; ok {
		delete(names, e.QualifiedName)
		if len(names) == 0 {
			delete(s.byFile, e.FilePath)
		}
	}
}

// evictLocked removes the entry with the oldest access time among the
// least-used quartile of the shard. Frequency picks the victim pool,
// recency picks the victim.
func (c *Cache) evictLocked(s *shard) {
	counts := make([]uint64, 0, len(s.entries))
	for _, e := range s.entries {
		counts = append(counts, e.accessCount)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })
	threshold := counts[len(counts)/4]

	var victim *Entry
	for _, e := range s.entries {
		if e.accessCount > threshold {
			continue
		}
		if victim == nil || e.lastAccessed < victim.lastAccessed {
			victim = e
		}
	}
	if victim == nil {
		return
	}
	c.unindexLocked(s, victim)
	delete(s.entries, victim.QualifiedName)
	c.stats.evictions.Add(1)
	debug.LogCache("evicted %s (count=%d)", victim.QualifiedName, victim.accessCount)
}

// Lookup finds an entry by exact qualified name, bumping its access
// history on a hit. The returned entry is a copy.
func (c *Cache) Lookup(qualified string) (Entry, bool) {
	s := c.shardFor(baseName(qualified))

	s.mu.Lock()
	e, ok := s.entries[qualified]
	if !ok {
		s.mu.Unlock()
		c.stats.misses.Add(1)
		return Entry{}, false
	}
	e.lastAccessed = c.clock.Add(1)
	e.accessCount++
	snapshot := *e
	s.mu.Unlock()

	c.stats.hits.Add(1)
	return snapshot, true
}

// LookupBase returns copies of every entry whose base name matches,
// in insertion order. Access history is bumped on each.
func (c *Cache) LookupBase(base string) []Entry {
	s := c.shardFor(base)

	s.mu.Lock()
	names := s.byBase[base]
	if len(names) == 0 {
		s.mu.Unlock()
		c.stats.misses.Add(1)
		return nil
	}
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		e := s.entries[name]
		e.lastAccessed = c.clock.Add(1)
		e.accessCount++
		out = append(out, *e)
	}
	s.mu.Unlock()

	c.stats.hits.Add(1)
	return out
}

// ReplaceFile drops every entry previously recorded for the file and
// inserts the new set. Re-parsing a file never leaves stale symbols
// behind.
func (c *Cache) ReplaceFile(filePath string, entries []Entry) {
	c.RemoveFile(filePath)
	for _, e := range entries {
		e.FilePath = filePath
		c.Insert(e)
	}
}

// RemoveFile drops every entry recorded for the file.
func (c *Cache) RemoveFile(filePath string) {
	for _, s := range c.shards {
		s.mu.Lock()
		for name := range s.byFile[filePath] {
			if e, ok := s.entries[name]; ok {
				c.unindexLocked(s, e)
				delete(s.entries, name)
			}
		}
		delete(s.byFile, filePath)
		s.mu.Unlock()
	}
}

// Len returns the number of cached entries across all shards.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// BaseNames returns every distinct base name currently cached. Used by
// suggestion lookups.
func (c *Cache) BaseNames() []string {
	var names []string
	for _, s := range c.shards {
		s.mu.RLock()
		for base := range s.byBase {
			names = append(names, base)
		}
		s.mu.RUnlock()
	}
	sort.Strings(names)
	return names
}
