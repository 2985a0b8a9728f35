package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pawlina-api/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedGeocoder Redis 缓存装饰器
// postcodes.io 有速率限制，同一邮编（店铺原点尤其）会被反复解析，命中缓存即可
// 缓存层任何故障都降级为直接解析，不影响正确性
type cachedGeocoder struct {
	inner Geocoder
	rdb   *redis.Client
	ttl   time.Duration
}

// WithCache 为解析器套上 Redis 缓存
func WithCache(inner Geocoder, rdb *redis.Client, ttl time.Duration) Geocoder {
	return &cachedGeocoder{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(postcode string) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
	return fmt.Sprintf("geo:postcode:%s", normalized)
}

func (c *cachedGeocoder) Resolve(ctx context.Context, postcode string) (Coordinates, error) {
	key := cacheKey(postcode)

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var coords Coordinates
		if err := json.Unmarshal([]byte(raw), &coords); err == nil {
			return coords, nil
		}
	}

	coords, err := c.inner.Resolve(ctx, postcode)
	if err != nil {
		// 解析失败不缓存：服务暂时不可用时不能把失败钉死
		return Coordinates{}, err
	}

	if raw, err := json.Marshal(coords); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Log.Warn("geo cache write failed", zap.String("postcode", postcode), zap.Error(err))
		}
	}

	return coords, nil
}
