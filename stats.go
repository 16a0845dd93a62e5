package dispatchcache

import "sync"

// Counters holds the per-key event tallies collected by Stats.
type Counters struct {
	Hits    uint64
	Misses  uint64
	Expires uint64
	Evicts  uint64
}

// Stats is an Observer that counts events per key. Clears reset every
// counter, matching the store they describe.
type Stats struct {
	mu     sync.Mutex
	keys   map[string]Counters
	clears uint64
}

// NewStats returns an empty Stats observer.
func NewStats() *Stats {
	return &Stats{keys: make(map[string]Counters)}
}

// On implements Observer.
func (s *Stats) On(d EventData) {
	s.mu.Lock()
	switch d.Event {
	case EventClear:
		s.keys = make(map[string]Counters)
		s.clears++
	case EventHit:
		c := s.keys[d.Key]
		c.Hits++
		s.keys[d.Key] = c
	case EventMiss:
		c := s.keys[d.Key]
		c.Misses++
		s.keys[d.Key] = c
	case EventExpire:
		c := s.keys[d.Key]
		c.Expires++
		s.keys[d.Key] = c
	case EventEvict:
		c := s.keys[d.Key]
		c.Evicts++
		s.keys[d.Key] = c
	}
	s.mu.Unlock()
}

// Key returns the counters recorded for one cache key.
func (s *Stats) Key(key string) Counters {
	s.mu.Lock()
	c := s.keys[key]
	s.mu.Unlock()
	return c
}

// Total sums the counters across all keys since the last clear.
func (s *Stats) Total() Counters {
	var t Counters
	s.mu.Lock()
	for _, c := range s.keys {
		t.Hits += c.Hits
		t.Misses += c.Misses
		t.Expires += c.Expires
		t.Evicts += c.Evicts
	}
	s.mu.Unlock()
	return t
}

// Clears returns how many times the cache was cleared.
func (s *Stats) Clears() uint64 {
	s.mu.Lock()
	n := s.clears
	s.mu.Unlock()
	return n
}
