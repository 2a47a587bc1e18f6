package app

import (
	"bitwise74/devdoc-api/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
)

// NewCacheStore returns the response cache selected by cache.type
func NewCacheStore(ctx context.Context, cfg *config.Config) (persist.CacheStore, error) {
	if cfg.Cache.Type != "redis" {
		return persist.NewMemoryStore(time.Minute), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return persist.NewRedisStore(client), nil
}

func publicViewKey(projectID string) string {
	return "public:" + projectID
}

// cachePublicView caches successful public views keyed by project ID, so
// evictPublicView can drop them when the owner changes the project. A nil
// store or a zero ttl disables caching.
func cachePublicView(store persist.CacheStore, ttl time.Duration) gin.HandlerFunc {
	if store == nil || ttl <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return cache.Cache(store, ttl, cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
		return true, cache.Strategy{CacheKey: publicViewKey(c.Param("id"))}
	}))
}

// evictPublicView drops the cached public view of :id after any successful
// write to that project
func evictPublicView(store persist.CacheStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		id := c.Param("id")
		if store == nil || id == "" || c.Request.Method == http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// The memory store reports a missing key, redis doesn't
		if err := store.Delete(publicViewKey(id)); err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
			zap.L().Warn("Failed to evict cached public view", zap.String("projectID", id), zap.Error(err))
		}
	}
}
