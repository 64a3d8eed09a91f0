// Package httpapi exposes the assessment service over HTTP with gin.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/application"
	"github.com/Skufu/lipidcare/internal/metrics"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Check is a named dependency probed by /readyz.
type Check struct {
	Name    string
	Checker HealthChecker
}

type Options struct {
	Service        *application.Service
	Checks         []Check
	Logger         *zap.Logger
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	router := gin.New()
	router.Use(
		requestLogger(opts.Logger),
		gin.Recovery(),
		metrics.Middleware(),
		limitBodySize(opts.MaxUploadBytes),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readiness(opts.Checks))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h := &handlers{svc: opts.Service, logger: opts.Logger}
	api := router.Group("/api")
	if opts.RateLimitRPS > 0 && opts.RateLimitBurst > 0 {
		api.Use(newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).middleware())
	}
	api.POST("/extract", h.extractReport)
	api.POST("/extract/text", h.extractText)
	api.POST("/analyze-lipid-profile", h.analyze)
	api.POST("/activities", h.logActivity)
	api.GET("/adherence/:patient_id", h.adherence)
	api.GET("/adherence/:patient_id/streak", h.streak)
	api.GET("/adherence/:patient_id/risk", h.dropoutRisk)
	api.GET("/patient-history/:patient_id", h.history)
	api.GET("/notifications/:patient_id", h.notifications)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Code: "not_found", Message: "endpoint not found"})
	})
	return router
}

func readiness(checks []Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"status": "ok"}
		code := http.StatusOK
		for _, check := range checks {
			if err := check.Checker.Ping(ctx); err != nil {
				body[check.Name] = fmt.Sprintf("unhealthy: %v", err)
				body["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			body[check.Name] = "ok"
		}
		c.JSON(code, body)
	}
}
