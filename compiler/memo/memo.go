// Package memo implements the two-tier memoization cache used by the
// resolvers: a declaration-scoped store keyed by declaration identity, and
// a global string-keyed store bounded by entry count and time-to-live.
//
// Entries are pure memoization. Dropping any of them, or the whole cache,
// never changes resolution results, only how often the underlying parsing
// and walking runs.
package memo

import (
	"sync"
	"time"
)

// Defaults for the global store. They bound memory when processing very
// large entity sets and are independent of correctness.
const (
	// DefaultMaxEntries is the bound on the global store size. Inserting
	// beyond it evicts the entry with the oldest insertion timestamp.
	DefaultMaxEntries = 4096
	// DefaultTTL is the age beyond which the periodic sweep drops entries.
	DefaultTTL = 5 * time.Minute
	// DefaultSweepEvery is the number of insertions between sweeps.
	DefaultSweepEvery = 512
)

// entry is one global store slot.
type entry struct {
	value    any
	inserted time.Time
}

// Store is the global string-keyed memoization store. It is safe for
// concurrent use by sibling generation tasks; all read-modify-write
// sequences (bound check, oldest eviction, insert) run under one mutex.
type Store struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	ttl        time.Duration
	sweepEvery int
	insertions int // since the last sweep
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries bounds the store to n entries.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithTTL sets the age beyond which the sweep drops entries.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithSweepEvery sets the number of insertions between sweeps.
func WithSweepEvery(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.sweepEvery = n
		}
	}
}

// withClock overrides the time source. Used by tests to drive eviction.
func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a global store with the given options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]entry),
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		sweepEvery: DefaultSweepEvery,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a value from the store. A hit does not refresh the entry's
// timestamp; eviction is oldest-insertion, not LRU-on-read.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores a value. When the store is at its bound, the entry with the
// oldest insertion timestamp is evicted first. Every sweepEvery insertions
// a sweep drops all entries older than the TTL.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldest()
	}
	s.entries[key] = entry{value: value, inserted: now}
	s.insertions++
	if s.insertions >= s.sweepEvery {
		s.insertions = 0
		s.sweep(now)
	}
}

// Clear fully empties the store and resets internal counters. It is called
// between independent generation runs to avoid stale cross-run leakage.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	s.insertions = 0
}

// Len reports the current number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictOldest removes the entry with the oldest insertion timestamp.
// Callers must hold the mutex.
func (s *Store) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for k, e := range s.entries {
		if first || e.inserted.Before(oldestAt) {
			oldestKey, oldestAt, first = k, e.inserted, false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}

// sweep drops entries older than the TTL. Callers must hold the mutex.
func (s *Store) sweep(now time.Time) {
	cutoff := now.Add(-s.ttl)
	for k, e := range s.entries {
		if e.inserted.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}
