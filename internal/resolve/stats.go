package resolve

import "sync/atomic"

type statCounters struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	insertions atomic.Uint64
	evictions  atomic.Uint64
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits       uint64  `json:"hits"`
	Misses     uint64  `json:"misses"`
	Insertions uint64  `json:"insertions"`
	Evictions  uint64  `json:"evictions"`
	Entries    int     `json:"entries"`
	HitRate    float64 `json:"hit_rate"`
}

// Stats snapshots the counters. HitRate is 0 when no lookups happened.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:       c.stats.hits.Load(),
		Misses:     c.stats.misses.Load(),
		Insertions: c.stats.insertions.Load(),
		Evictions:  c.stats.evictions.Load(),
		Entries:    c.Len(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
