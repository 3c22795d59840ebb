package tilemap

// DefaultCacheLimit bounds the primary cache generation.
const DefaultCacheLimit = 1000

// Cache keeps recently used values across two generations. Inserts land
// in the primary generation; once it outgrows the limit it is demoted to
// fallback and the previous fallback is dropped, so a hot value survives
// at most one demotion without being touched.
//
// Cache is not safe for concurrent use. The render thread owns it.
type Cache[K comparable, V any] struct {
	limit    int
	primary  map[K]V
	fallback map[K]V
}

// NewCache builds an empty cache. A limit of zero or less uses
// DefaultCacheLimit.
func NewCache[K comparable, V any](limit int) *Cache[K, V] {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &Cache[K, V]{
		limit:    limit,
		primary:  map[K]V{},
		fallback: map[K]V{},
	}
}

// Get looks a value up in both generations.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if v, ok := c.primary[key]; ok {
		return v, true
	}
	v, ok := c.fallback[key]
	return v, ok
}

// Put inserts a value, demoting the primary generation when it is full.
func (c *Cache[K, V]) Put(key K, value V) {
	c.primary[key] = value
	if len(c.primary) > c.limit {
		c.fallback = c.primary
		c.primary = make(map[K]V, c.limit)
	}
}

// Len returns the number of values across both generations. Keys present
// in both count twice; Len is a capacity gauge, not a key count.
func (c *Cache[K, V]) Len() int {
	return len(c.primary) + len(c.fallback)
}
