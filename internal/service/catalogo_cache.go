package service

import (
	"context"
	"encoding/json"
	"time"

	"comerciopos/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const catalogoActivosKey = "cache:productos_activos"

// CatalogoCache caches the active-products catalog. The checkout screen polls
// it constantly, so cache misses go to Postgres but hits stay in Redis.
// Implementations must be safe to call concurrently.
type CatalogoCache interface {
	GetActivos(ctx context.Context) ([]dto.ProductoResponse, bool)
	SetActivos(ctx context.Context, productos []dto.ProductoResponse)
	InvalidarActivos(ctx context.Context)
}

type redisCatalogoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogoCache builds a Redis-backed catalog cache. TTL is a staleness
// backstop; writes invalidate eagerly.
func NewCatalogoCache(rdb *redis.Client, ttl time.Duration) CatalogoCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisCatalogoCache{rdb: rdb, ttl: ttl}
}

func (c *redisCatalogoCache) GetActivos(ctx context.Context) ([]dto.ProductoResponse, bool) {
	raw, err := c.rdb.Get(ctx, catalogoActivosKey).Bytes()
	if err != nil {
		return nil, false
	}
	var productos []dto.ProductoResponse
	if err := json.Unmarshal(raw, &productos); err != nil {
		log.Warn().Err(err).Msg("catalogo cache: corrupt entry, dropping")
		c.InvalidarActivos(ctx)
		return nil, false
	}
	return productos, true
}

func (c *redisCatalogoCache) SetActivos(ctx context.Context, productos []dto.ProductoResponse) {
	raw, err := json.Marshal(productos)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, catalogoActivosKey, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("catalogo cache: set failed")
	}
}

func (c *redisCatalogoCache) InvalidarActivos(ctx context.Context) {
	if err := c.rdb.Del(ctx, catalogoActivosKey).Err(); err != nil {
		log.Warn().Err(err).Msg("catalogo cache: invalidate failed")
	}
}
