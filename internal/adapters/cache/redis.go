package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/phenrril/kitos/internal/domain"
)

const keyPrefix = "kitos:variants:"

type RedisVariantCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisVariantCache connects and pings before returning.
func NewRedisVariantCache(opts RedisOptions) (*RedisVariantCache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisVariantCache{rdb: rdb, ttl: ttl}, nil
}

func genKey(designID uuid.UUID) string { return keyPrefix + designID.String() + ":gen" }

func listKey(designID uuid.UUID, gen int64) string {
	return keyPrefix + designID.String() + ":" + strconv.FormatInt(gen, 10)
}

// Get reads the current generation counter, then the list stored under it.
// A design that was never invalidated is at generation 0.
func (c *RedisVariantCache) Get(ctx context.Context, designID uuid.UUID) ([]domain.Variant, int64, bool, error) {
	gen, err := c.rdb.Get(ctx, genKey(designID)).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, 0, false, err
	}
	raw, err := c.rdb.Get(ctx, listKey(designID, gen)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}
	var vs []domain.Variant
	if err := json.Unmarshal(raw, &vs); err != nil {
		return nil, gen, false, err
	}
	return vs, gen, true, nil
}

func (c *RedisVariantCache) Set(ctx context.Context, designID uuid.UUID, gen int64, vs []domain.Variant) error {
	raw, err := json.Marshal(vs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(designID, gen), raw, c.ttl).Err()
}

// Invalidate bumps the generation. Lists cached under older generations are no
// longer read and expire with their TTL.
func (c *RedisVariantCache) Invalidate(ctx context.Context, designID uuid.UUID) error {
	return c.rdb.Incr(ctx, genKey(designID)).Err()
}

func (c *RedisVariantCache) Close() error { return c.rdb.Close() }
