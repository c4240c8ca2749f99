package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/rest/middleware"
	"github.com/pointloop/pointloop/internal/webhook"
)

// NewRouter assembles the gin engine: ambient middleware, the service health
// endpoint and the per-topic webhook routes under /webhooks.
func NewRouter(cfg *config.Configuration, handler *webhook.Handler, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.SentryMiddleware(cfg),
		middleware.SentryWebhookContextMiddleware,
		recoveryMiddleware(log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "pointloop",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	webhooks := router.Group("/webhooks")
	handler.Register(webhooks)

	return router
}

// recoveryMiddleware renders panics from the middleware chain in the same
// response envelope processing failures use.
func recoveryMiddleware(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		log.Errorw("panic recovered in request pipeline",
			"path", c.Request.URL.Path,
			"panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			webhook.FailureResult("internal server error"))
	})
}
