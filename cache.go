package dtoforge

// Cache is the interface for the global memoization store shared by the
// resolvers. Entries are pure memoization: removing any entry must never
// change program behavior, only performance.
type Cache interface {
	// Get retrieves a value from the cache.
	// The second return value reports whether the key was present.
	Get(key string) (any, bool)

	// Set stores a value in the cache. The store may evict older entries
	// to stay within its configured bound.
	Set(key string, value any)

	// Clear removes all values from the cache and resets internal
	// counters. It is called between independent generation runs.
	Clear()

	// Len reports the current number of entries.
	Len() int
}

// CacheKey builds a namespaced cache key from its parts.
type CacheKey struct {
	Kind     string // cache namespace, e.g. "relation", "exclusion"
	Entity   string
	Property string
	Extra    string // discriminator within the namespace, e.g. decorator text
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Kind + ":" + k.Entity + ":" + k.Property + ":" + k.Extra
}
