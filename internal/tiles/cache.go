package tiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/parcelmap/internal/domain"
)

// Cache is an LRU+TTL decorator over a Source. Missing tiles are not cached.
type Cache struct {
	src      Source
	lru      *expirable.LRU[string, Tile]
	requests *prometheus.CounterVec
}

// NewCache wraps src. size <= 0 disables caching; requests counts by "result" and may be nil.
func NewCache(src Source, size int, ttl time.Duration, requests *prometheus.CounterVec) *Cache {
	c := &Cache{src: src, requests: requests}
	if size > 0 {
		c.lru = expirable.NewLRU[string, Tile](size, nil, ttl)
	}
	return c
}

// Metadata delegates to the source.
func (c *Cache) Metadata() map[string]string { return c.src.Metadata() }

// Tile returns a cached tile or reads it from the source.
func (c *Cache) Tile(ctx context.Context, z, x, y int) (Tile, error) {
	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	if c.lru != nil {
		if t, ok := c.lru.Get(key); ok {
			c.inc("hit")
			return t, nil
		}
	}

	t, err := c.src.Tile(ctx, z, x, y)
	switch {
	case errors.Is(err, domain.ErrTileNotFound):
		c.inc("not_found")
		return Tile{}, err
	case err != nil:
		c.inc("error")
		return Tile{}, err
	}

	c.inc("miss")
	if c.lru != nil {
		c.lru.Add(key, t)
	}
	return t, nil
}

// Len returns the number of cached tiles.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *Cache) inc(result string) {
	if c.requests != nil {
		c.requests.WithLabelValues(result).Inc()
	}
}
