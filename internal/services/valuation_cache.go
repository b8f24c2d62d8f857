package services

import (
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/toxzak-svg/Axievale/internal/metrics"
	"github.com/toxzak-svg/Axievale/internal/models"
)

// noPriceSentinel keys cache entries for requests that carried no listing
// price. Requests for the same Axie at different listing prices are distinct
// entries, each classified independently.
const noPriceSentinel = "-"

// CachedValuation is a memoized extension response.
type CachedValuation struct {
	Axie      *models.Axie
	Valuation *models.Valuation
	Signal    models.Signal
}

type cacheEntry struct {
	value      CachedValuation
	insertedAt time.Time
}

// ValuationCache is a bounded, time-expiring memo in front of the valuation
// orchestrator for the extension endpoint. Reads refresh LRU recency; entries
// older than the TTL are treated as absent and deleted on detection.
// Constructed once at service start and injected, never implicitly reset.
type ValuationCache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewValuationCache creates a cache with the given capacity and TTL.
func NewValuationCache(capacity int, ttl time.Duration) (*ValuationCache, error) {
	entries, err := lru.New[string, cacheEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &ValuationCache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// CacheKey derives the cache key from an Axie id and optional listing price.
func CacheKey(axieID string, listingPrice *float64) string {
	if listingPrice == nil {
		return axieID + "|" + noPriceSentinel
	}
	return axieID + "|" + strconv.FormatFloat(*listingPrice, 'f', -1, 64)
}

// Get returns the cached value for key, if present and unexpired.
func (c *ValuationCache) Get(key string) (CachedValuation, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		metrics.CacheMisses.Inc()
		return CachedValuation{}, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.entries.Remove(key)
		metrics.CacheMisses.Inc()
		return CachedValuation{}, false
	}
	metrics.CacheHits.Inc()
	return entry.value, true
}

// Set stores value under key with the current timestamp, evicting the least
// recently used entry when at capacity.
func (c *ValuationCache) Set(key string, value CachedValuation) {
	c.entries.Add(key, cacheEntry{value: value, insertedAt: c.now()})
}

// Len returns the current number of entries, expired or not.
func (c *ValuationCache) Len() int {
	return c.entries.Len()
}
