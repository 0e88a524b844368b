package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/guttosm/spimexpulse/internal/domain/dto"
	"github.com/guttosm/spimexpulse/internal/metrics"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) { _ = c.Error(assertErr{}) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
}

func resetRateLimiter(t *testing.T) {
	t.Helper()
	oldWindow, oldLimit := window, limit
	t.Cleanup(func() {
		window, limit = oldWindow, oldLimit
		visitors, lastSweep = make(map[string]*visitor), time.Time{}
	})
}

func TestRateLimiter(t *testing.T) {
	resetRateLimiter(t)
	cases := []struct {
		name   string
		reqs   int
		lim    int
		expect int
	}{
		{name: "within limit", reqs: 2, lim: 3, expect: http.StatusOK},
		{name: "exceed limit", reqs: 5, lim: 3, expect: http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			window = time.Second
			limit = tc.lim
			visitors, lastSweep = make(map[string]*visitor), time.Time{}
			r.Use(RateLimiter())
			r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
			var last int
			for i := 0; i < tc.reqs; i++ {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				last = w.Code
			}
			if last != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, last)
			}
		})
	}
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	resetRateLimiter(t)
	window, limit = time.Minute, 2
	visitors, lastSweep = make(map[string]*visitor), time.Time{}

	t0 := time.Now()
	a := limiterFor("192.0.2.1", t0)
	if !a.AllowN(t0, 1) || !a.AllowN(t0, 1) || a.AllowN(t0, 1) {
		t.Fatalf("expected a burst of exactly %d", limit)
	}
	limiterFor("192.0.2.2", t0.Add(30*time.Second))
	limiterFor("192.0.2.2", t0.Add(70*time.Second))

	if _, ok := visitors["192.0.2.1"]; ok {
		t.Fatalf("idle client should have been evicted")
	}
	if len(visitors) != 1 {
		t.Fatalf("visitors=%d, want 1", len(visitors))
	}

	back := t0.Add(71 * time.Second)
	again := limiterFor("192.0.2.1", back)
	if !again.AllowN(back, 1) || !again.AllowN(back, 1) {
		t.Fatalf("returning client should start with a full bucket")
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "bad stuff", assertErr{})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
}

func TestErrorHandler_KeepsStatusAndResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
		_ = c.Error(dto.NewErrorResponse("invalid limit", nil))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Message != "invalid limit" {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
}

func TestErrorHandler_NoErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/v1/trading-dates", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	ok := metrics.HTTPRequests.WithLabelValues("/api/v1/trading-dates", "200")
	miss := metrics.HTTPRequests.WithLabelValues("unmatched", "404")
	beforeOK, beforeMiss := testutil.ToFloat64(ok), testutil.ToFloat64(miss)

	for _, path := range []string{"/api/v1/trading-dates", "/api/v1/trading-dates", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(ok) - beforeOK; got != 2 {
		t.Fatalf("route counter delta=%v, want 2", got)
	}
	if got := testutil.ToFloat64(miss) - beforeMiss; got != 1 {
		t.Fatalf("unmatched counter delta=%v, want 1", got)
	}
}
