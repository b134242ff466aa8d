package common

import (
	"strings"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/metrics"

	"github.com/patrickmn/go-cache"
)

// cachedPrefixes label the hit/miss metrics; other keys count as "other"
var cachedPrefixes = []constants.CachePrefix{
	constants.CachePrefixHealthCounts,
}

// CacheService is the in-process fallback used when Redis is not configured.
// Entries live only as long as the process, so each replica warms its own copy.
type CacheService struct {
	cache   *cache.Cache
	metrics *metrics.MetricsRegistry
}

var _ CacheInterface = (*CacheService)(nil)

// NewCacheService creates the in-memory cache. m may be nil.
func NewCacheService(defaultTTL, cleanupInterval time.Duration, m *metrics.MetricsRegistry) *CacheService {
	return &CacheService{
		cache:   cache.New(defaultTTL, cleanupInterval),
		metrics: m,
	}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// GetOrSet counts a hit or a miss under the key's prefix. A failed load is not cached.
func (cs *CacheService) GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error) {
	if val, found := cs.cache.Get(key); found {
		countCache(cs.metrics, keyPattern(key), true)
		return val, nil
	}
	countCache(cs.metrics, keyPattern(key), false)

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.cache.Set(key, val, duration)
	return val, nil
}

// Len is the number of entries, expired ones included until the next cleanup
func (cs *CacheService) Len() int {
	return cs.cache.ItemCount()
}

// Close drops every entry
func (cs *CacheService) Close() error {
	cs.cache.Flush()
	return nil
}

func keyPattern(key string) string {
	for _, p := range cachedPrefixes {
		if strings.HasPrefix(key, string(p)) {
			return strings.TrimSuffix(strings.ToLower(string(p)), "_")
		}
	}
	return "other"
}
