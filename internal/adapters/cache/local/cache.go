// Package local es el ReportCache en proceso (patrickmn/go-cache).
// Se usa cuando no hay REDIS_ADDR: sirve para una sola réplica.
package local

import (
	"context"
	"time"

	"pedigree-genetics/internal/domain/breeding"

	gocache "github.com/patrickmn/go-cache"
)

type Cache struct {
	c *gocache.Cache
}

// New crea el cache. cleanup = 0 desactiva el janitor (tests): los items
// vencidos igual se ignoran en Get.
func New(ttl, cleanup time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{c: gocache.New(ttl, cleanup)}
}

func (c *Cache) Get(ctx context.Context, key string) (breeding.CachedCOI, bool, error) {
	v, found := c.c.Get(key)
	if !found {
		return breeding.CachedCOI{}, false, nil
	}
	cached, ok := v.(breeding.CachedCOI)
	if !ok {
		c.c.Delete(key)
		return breeding.CachedCOI{}, false, nil
	}
	return cached, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v breeding.CachedCOI) error {
	c.c.Set(key, v, gocache.DefaultExpiration)
	return nil
}

func (c *Cache) ItemCount() int {
	return c.c.ItemCount()
}

func (c *Cache) Flush() {
	c.c.Flush()
}
