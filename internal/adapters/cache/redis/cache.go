// Package redis es el ReportCache compartido entre réplicas (go-redis v9).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/breeding"

	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "pedigree:"

// client es el subconjunto de go-redis que usa el cache (permite fakes en tests).
type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

type Cache struct {
	rdb    client
	ttl    time.Duration
	prefix string
}

func New(rdb *goredis.Client, ttl time.Duration) *Cache {
	return newCache(rdb, ttl)
}

func newCache(rdb client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: defaultPrefix}
}

// Connect abre el cliente y hace ping, como el resto de los adapters externos.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: missing address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (c *Cache) Get(ctx context.Context, key string) (breeding.CachedCOI, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return breeding.CachedCOI{}, false, nil
		}
		return breeding.CachedCOI{}, false, err
	}

	var v breeding.CachedCOI
	if err := json.Unmarshal(raw, &v); err != nil {
		// entrada corrupta o de otra versión: miss
		return breeding.CachedCOI{}, false, nil
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v breeding.CachedCOI) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}
