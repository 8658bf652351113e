package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"golang.org/x/time/rate"

	"day-scheduler/internal/logger"
	"day-scheduler/internal/metrics"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func get(router *gin.Engine, path, remote string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Allow(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	before := counterValue(metrics.RateLimited.WithLabelValues("/limited"))

	if w := get(router, "/limited", "127.0.0.1:12345"); w.Code != http.StatusOK {
		t.Errorf("Expected first request to succeed, got status %d", w.Code)
	}
	if w := get(router, "/limited", "127.0.0.1:12345"); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected second request to be rate limited, got status %d", w.Code)
	}
	if after := counterValue(metrics.RateLimited.WithLabelValues("/limited")); after != before+1 {
		t.Errorf("Expected rate limited counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := get(router, "/test", "127.0.0.1:12345"); w.Code != http.StatusOK {
		t.Errorf("Expected request from first IP to succeed, got %d", w.Code)
	}
	if w := get(router, "/test", "127.0.0.2:12345"); w.Code != http.StatusOK {
		t.Errorf("Expected request from second IP to succeed, got %d", w.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(0, 0))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		if w := get(router, "/test", "127.0.0.1:12345"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 with limiting disabled, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	clock := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	v := newVisitors(rate.Limit(1), 1, time.Minute, func() time.Time { return clock })
	router := setupTestGin()
	router.Use(rateLimit(v))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 1; i <= 100; i++ {
		get(router, "/test", fmt.Sprintf("10.0.0.%d:1000", i))
	}
	if n := v.count(); n != 100 {
		t.Fatalf("Expected 100 tracked visitors, got %d", n)
	}

	clock = clock.Add(30 * time.Second)
	get(router, "/test", "10.0.0.1:1000")

	clock = clock.Add(45 * time.Second)
	if w := get(router, "/test", "10.0.0.200:1000"); w.Code != http.StatusOK {
		t.Fatalf("Expected new visitor to pass, got %d", w.Code)
	}
	// Only the visitor seen within the last minute and the newcomer remain.
	if n := v.count(); n != 2 {
		t.Fatalf("Expected idle visitors to be evicted, %d remain", n)
	}
}

func TestRecoveryWithLog(t *testing.T) {
	router := setupTestGin()
	router.Use(RecoveryWithLog())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	if w := get(router, "/panic", "127.0.0.1:1"); w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 after panic, got %d", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	router := setupTestGin()
	router.Use(RequestLogger())

	var fromCtx bool
	router.GET("/ping", func(c *gin.Context) {
		fromCtx = logger.WithContext(c.Request.Context()) != logger.Get()
		c.Status(http.StatusNoContent)
	})

	w := get(router, "/ping", "127.0.0.1:1")
	if id := w.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Fatalf("expected generated request id, got %q", id)
	}
	if !fromCtx {
		t.Fatal("expected request scoped logger in context")
	}

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected incoming request id to be kept, got %q", got)
	}
}

func TestMetrics(t *testing.T) {
	router := setupTestGin()
	router.Use(Metrics())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := metrics.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")
	before := counterValue(counter)
	get(router, "/items/1", "127.0.0.1:1")
	get(router, "/items/2", "127.0.0.1:1")
	if after := counterValue(counter); after != before+2 {
		t.Fatalf("expected both requests under the route template, got %v -> %v", before, after)
	}

	unmatched := metrics.HTTPRequests.WithLabelValues("GET", "unmatched", "404")
	before = counterValue(unmatched)
	get(router, "/nowhere", "127.0.0.1:1")
	if after := counterValue(unmatched); after != before+1 {
		t.Fatalf("expected unmatched label, got %v -> %v", before, after)
	}
}
