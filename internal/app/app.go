package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/api"
	"github.com/guttosm/spimexpulse/internal/logger"
	"github.com/guttosm/spimexpulse/internal/service"
	"github.com/guttosm/spimexpulse/internal/storage/cache"
)

// cacheOpener is an indirection used by InitializeApp; overridden in tests.
var cacheOpener = func(ctx context.Context, cfg config.RedisConfig) (cache.Cache, error) {
	return cache.NewRedisCache(ctx, cfg)
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens and migrates the configured database (OpenStorage).
//   - Connects the Redis cache when REDIS_URL is set; an unreachable Redis is
//     logged and the API runs uncached.
//   - Wires service, handler, router and health probes.
//   - Provides a cleanup function closing the database and the cache.
func InitializeApp(ctx context.Context, cfg config.Config) (*gin.Engine, func(), error) {
	db, repo, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var c cache.Cache
	if cfg.Redis.URL != "" {
		rc, err := cacheOpener(ctx, cfg.Redis)
		if err != nil {
			logger.L().Warn().Err(err).Msg("redis unavailable; serving uncached")
		} else {
			c = rc
		}
	}

	svc := service.NewResultsService(repo, c)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	var cachePing api.PingFunc
	if c != nil {
		cachePing = c.Ping
	}
	api.NewHealthHandler(db.PingContext, cachePing).Register(router)

	cleanup := func() {
		if c != nil {
			_ = c.Close()
		}
		_ = db.Close()
	}

	return router, cleanup, nil
}
