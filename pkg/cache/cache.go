package cache

import "time"

// Cache is a TTL key/value cache for values that are expensive to produce,
// such as probability estimates.
type Cache interface {
	// Get returns (value, true) if key is present and not expired.
	Get(key string) (interface{}, bool)

	// Set stores value under key for ttl. It reports whether the write was
	// admitted; admission may be refused under contention.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes key.
	Delete(key string)

	// Clear removes all values.
	Clear()

	// Close releases resources.
	Close()
}
