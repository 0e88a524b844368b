package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/guttosm/spimexpulse/internal/domain/dto"
)

// visitor is the token bucket of one client IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Per-IP token buckets, process-local. A client may burst up to `limit`
// requests and is refilled at `limit` tokens per `window`.
var (
	visitors        = make(map[string]*visitor)
	lastSweep       time.Time
	window          = time.Minute
	limit           = 120
	rateLimiterLock sync.Mutex
)

// limiterFor returns the bucket of ip, creating it on first sight.
//
// At most once per window, buckets idle for a whole window are dropped: by then
// they have refilled to the burst size and are indistinguishable from a new one.
func limiterFor(ip string, now time.Time) *rate.Limiter {
	rateLimiterLock.Lock()
	defer rateLimiterLock.Unlock()

	if now.Sub(lastSweep) >= window {
		for key, v := range visitors {
			if now.Sub(v.lastSeen) >= window {
				delete(visitors, key)
			}
		}
		lastSweep = now
	}

	v, ok := visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimiter limits each client IP to `limit` requests per `window`
// (default 120 per minute) and answers 429 with an ErrorResponse once exceeded.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter())
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		if !limiterFor(c.ClientIP(), now).AllowN(now, 1) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
