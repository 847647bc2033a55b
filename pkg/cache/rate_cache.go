package cache

import (
	"sync"
	"time"
)

type cachedRate struct {
	rate      float64
	timestamp time.Time
}

// RateCache holds recently fetched USD rates with a TTL. It is constructed
// and passed in, never a package-level singleton.
type RateCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	rates map[string]cachedRate
}

func NewRateCache(ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateCache{
		ttl:   ttl,
		rates: make(map[string]cachedRate),
	}
}

// Get returns the cached rate, or false if absent or stale.
func (c *RateCache) Get(symbol string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.rates[symbol]
	if !ok {
		return 0, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return 0, false
	}
	return entry.rate, true
}

func (c *RateCache) Set(symbol string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates[symbol] = cachedRate{
		rate:      rate,
		timestamp: time.Now(),
	}
}
