package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/types"
)

// SentryMiddleware returns a middleware that captures errors and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryWebhookContextMiddleware tags the Sentry scope with the delivery's
// shop domain and topic so captured errors can be traced back to a shop.
func SentryWebhookContextMiddleware(c *gin.Context) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		c.Next()
		return
	}
	if shopDomain := c.GetHeader(types.HeaderShopDomain); shopDomain != "" {
		hub.Scope().SetTag("shop_domain", shopDomain)
	}
	if topic := c.GetHeader(types.HeaderTopic); topic != "" {
		hub.Scope().SetTag("topic", topic)
	}
	c.Next()
}
