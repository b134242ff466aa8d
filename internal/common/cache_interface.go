package common

import (
	"encoding/json"
	"time"

	"multipark/backoffice/internal/metrics"
)

// CacheInterface defines the contract for cache implementations
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetOrLoad is a typed GetOrSet. The in-memory cache hands back the stored value as is,
// Redis hands back decoded JSON, so anything that is not already a T is re-decoded into one.
// Hits and misses are counted under pattern when m is set.
func GetOrLoad[T any](c CacheInterface, m *metrics.MetricsRegistry, pattern, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	var zero T

	if cached, found := c.Get(key); found {
		if v, ok := cached.(T); ok {
			countCache(m, pattern, true)
			return v, nil
		}
		if raw, err := json.Marshal(cached); err == nil {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				countCache(m, pattern, true)
				return v, nil
			}
		}
	}

	countCache(m, pattern, false)
	v, err := loader()
	if err != nil {
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

func countCache(m *metrics.MetricsRegistry, pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(pattern).Inc()
	}
}
