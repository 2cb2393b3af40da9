// Package httpapi is the HTTP surface over a Supervisor and LogStore: route
// registration, request parsing and validation, and plain-text/JSON response
// rendering.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/llmshell/supervisor/internal/httpapi/middleware"
	"github.com/llmshell/supervisor/internal/logstore"
	"github.com/llmshell/supervisor/internal/supervisor"
)

// Handlers bundles the collaborators the HTTP surface calls into.
type Handlers struct {
	sup   *supervisor.Supervisor
	store *logstore.Store
}

// Options configures router construction.
type Options struct {
	DevCORS            bool
	MaxConcurrentCalls int
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrentCalls <= 0 {
		o.MaxConcurrentCalls = 64
	}
	return o
}

// NewRouter builds the gin engine with the full middleware chain and route
// table: recovery first (outermost), dev CORS, request-ID stamping, a
// concurrency cap, then access logging.
func NewRouter(log *zap.Logger, sup *supervisor.Supervisor, store *logstore.Store, opts Options) *gin.Engine {
	opts = opts.withDefaults()
	h := &Handlers{sup: sup, store: store}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery())

	if opts.DevCORS {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.CapConcurrentRequests(opts.MaxConcurrentCalls))
	r.Use(zapAccessLog(log))

	r.POST("/start", h.handleStart)
	r.GET("/status", h.handleStatus)
	r.POST("/kill", h.handleKill)
	r.POST("/restart", h.handleRestart)
	r.GET("/logs", h.handleLogs)
	r.GET("/health", handleHealth)

	return r
}

// zapAccessLog logs one structured line per request, grouping 5xx as errors
// and 4xx as warnings.
func zapAccessLog(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetRequestID(c)),
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
