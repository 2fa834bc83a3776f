package narrative

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/metrics"
)

// Cache keeps generated narratives by prompt hash.
type Cache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCache creates a narrative cache.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Key hashes the model name and prompt.
func Key(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached narrative.
func (c *Cache) Get(key string) (*Narrative, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, found := c.cache.Get(key); found {
		if n, ok := v.(*Narrative); ok {
			c.hitCount++
			c.updateMetrics()
			return n, true
		}
	}
	c.missCount++
	c.updateMetrics()
	return nil, false
}

// Set stores a narrative. When full, expired entries are dropped first and
// the item is skipped if that frees nothing.
func (c *Cache) Set(key string, n *Narrative) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxSize {
			return
		}
	}
	c.cache.Set(key, n, c.ttl)
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

func (c *Cache) stats() (hits, misses uint64, ratio float64) {
	hits, misses = c.hitCount, c.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (c *Cache) updateMetrics() {
	_, _, ratio := c.stats()
	metrics.UpdateNarrativeCacheHitRatio(ratio)
}

// ItemCount returns the number of items in cache
func (c *Cache) ItemCount() int {
	return c.cache.ItemCount()
}
