package http

import (
	nethttp "net/http"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"day-scheduler/internal/http/handlers"
	"day-scheduler/internal/http/middleware"
)

// Options tune the router. Zero values disable rate limiting and static serving.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	StaticDir      string
}

// NewRouter builds an engine with the standard middleware chain and all routes.
func NewRouter(h *handlers.Handler, health *handlers.HealthHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		middleware.RecoveryWithLog(),
		middleware.Metrics(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:   []string{middleware.RequestIDHeader},
			MaxAge:          12 * time.Hour,
		}),
	)
	RegisterRoutes(r, h, health, opts)
	return r
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, opts Options) {
	if health != nil {
		r.GET("/healthz", health.Liveness)
		r.GET("/readyz", health.Readiness)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst))
	{
		api.GET("/tasks", h.ListTasks)
		api.POST("/tasks", h.CreateTask)
		api.PUT("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)

		api.GET("/schedule", h.ListSchedule)
		api.POST("/schedule", h.CreateEntry)
		api.PUT("/schedule/:id", h.UpdateEntry)
		api.DELETE("/schedule/:id", h.DeleteEntry)
		api.POST("/schedule/sync", h.SyncSchedule)

		api.GET("/templates", h.Templates)
		api.GET("/sunset", h.Sunset)
	}

	r.NoRoute(staticFallback(opts.StaticDir))
}

// staticFallback serves the web client from dir and falls back to index.html
// for client-side routes. API paths always get a JSON 404.
func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if dir == "" || strings.HasPrefix(path, "/api/") || c.Request.Method != nethttp.MethodGet {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		// ServeFile rejects any URL still holding "..", so serve under the cleaned path.
		clean := pathpkg.Clean("/" + path)
		c.Request.URL.Path = clean

		file := filepath.Join(dir, filepath.FromSlash(clean))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.JSON(nethttp.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	}
}
