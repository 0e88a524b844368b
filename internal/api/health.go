package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (database, plus Redis when the cache is enabled).
type HealthHandler struct {
	dbPing    PingFunc
	cachePing PingFunc
}

// NewHealthHandler constructs a HealthHandler. cachePing may be nil when the
// cache is disabled.
func NewHealthHandler(dbPing, cachePing PingFunc) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, cachePing: cachePing}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) Register(r *gin.Engine) {
	// Liveness probe
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness probe
	// @Summary      Readiness probe
	// @Description  Returns ready if the database (and Redis, when configured) are reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]string
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"status": "ready", "database": check(ctx, h.dbPing)}
		ready := body["database"] != "down"
		if h.cachePing != nil {
			body["cache"] = check(ctx, h.cachePing)
			ready = ready && body["cache"] != "down"
		}
		if !ready {
			body["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}

func check(ctx context.Context, ping PingFunc) string {
	if ping == nil {
		return "unknown"
	}
	if err := ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
