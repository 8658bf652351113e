package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"day-scheduler/internal/metrics"
)

// visitorTTL is how long an idle client keeps its limiter.
const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors hands out one limiter per client IP and forgets clients idle
// for longer than ttl. Sweeps run inline, at most once per ttl.
type visitors struct {
	mu        sync.Mutex
	byIP      map[string]*visitor
	r         rate.Limit
	b         int
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newVisitors(r rate.Limit, b int, ttl time.Duration, now func() time.Time) *visitors {
	return &visitors{
		byIP:      make(map[string]*visitor),
		r:         r,
		b:         b,
		ttl:       ttl,
		now:       now,
		lastSweep: now(),
	}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) >= v.ttl {
		for key, vis := range v.byIP {
			if now.Sub(vis.lastSeen) >= v.ttl {
				delete(v.byIP, key)
			}
		}
		v.lastSweep = now
	}

	vis, exists := v.byIP[ip]
	if !exists {
		vis = &visitor{limiter: rate.NewLimiter(v.r, v.b)}
		v.byIP[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

func (v *visitors) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byIP)
}

// RateLimiter allows each client IP r requests per second with burst b.
// A non-positive r disables limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	if r <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if b < 1 {
		b = 1
	}
	return rateLimit(newVisitors(r, b, visitorTTL, time.Now))
}

func rateLimit(v *visitors) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			metrics.RateLimited.WithLabelValues(routeOf(c)).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
