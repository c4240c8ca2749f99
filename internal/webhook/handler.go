package webhook

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/types"
	"github.com/pointloop/pointloop/internal/webhook/verifier"
)

// Handler is the webhook gateway. It owns the delivery lifecycle for every
// topic: read the raw body, verify the HMAC signature, construct the event,
// dispatch to the topic processor and render the uniform response envelope.
// A signature failure returns 401 with no processing; any processing
// failure returns 500 so the delivering platform retries.
type Handler struct {
	registry      *Registry
	webhookSecret string
	logger        *logger.Logger
}

// NewHandler creates the webhook gateway handler.
func NewHandler(cfg *config.Configuration, registry *Registry, log *logger.Logger) *Handler {
	return &Handler{
		registry:      registry,
		webhookSecret: cfg.Shopify.WebhookSecret,
		logger:        log,
	}
}

// HandleEvent returns the POST handler for a topic processor.
func (h *Handler) HandleEvent(proc Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			h.logger.Errorw("failed to read webhook body",
				"topic", proc.Topic(),
				"error", err)
			c.JSON(http.StatusInternalServerError, FailureResult("failed to read request body"))
			return
		}

		signature := c.GetHeader(types.HeaderHmacSignature)
		if !verifier.Verify(rawBody, signature, h.webhookSecret) {
			h.logger.Warnw("webhook signature verification failed",
				"topic", proc.Topic(),
				"shop_domain", c.GetHeader(types.HeaderShopDomain),
				"has_signature", signature != "")
			c.JSON(http.StatusUnauthorized, FailureResult("unauthorized: invalid webhook signature"))
			return
		}

		shopDomain := c.GetHeader(types.HeaderShopDomain)
		event := &Event{
			Topic:           proc.Topic(),
			ShopDomain:      shopDomain,
			RawBody:         rawBody,
			SignatureHeader: signature,
		}

		ctx := types.SetShopDomain(c.Request.Context(), shopDomain)
		ctx = types.SetTopic(ctx, proc.Topic().String())

		h.logger.Infow("processing webhook",
			"topic", proc.Topic(),
			"shop_domain", shopDomain,
			"body_bytes", len(rawBody))

		result := h.process(ctx, proc, event)

		status := http.StatusOK
		if !result.Success {
			status = http.StatusInternalServerError
		}

		if result.Success {
			h.logger.Infow("webhook processed",
				"topic", proc.Topic(),
				"shop_domain", shopDomain,
				"message", result.Message)
		} else {
			h.logger.Errorw("webhook processing failed",
				"topic", proc.Topic(),
				"shop_domain", shopDomain,
				"error", result.Error)
		}

		c.JSON(status, result)
	}
}

// process runs the topic processor with a recovery boundary so nothing
// escapes past the handler to the transport layer.
func (h *Handler) process(ctx context.Context, proc Processor, event *Event) (result *ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("webhook processor panicked",
				"topic", proc.Topic(),
				"shop_domain", event.ShopDomain,
				"panic", r)
			result = FailureResult("internal error while processing webhook")
		}
	}()

	result = proc.ProcessWebhook(ctx, event)
	if result == nil {
		result = FailureResult("processor returned no result")
	}
	return result
}

// HandleHealth returns the GET handler identifying a topic endpoint.
func (h *Handler) HandleHealth(proc Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"webhook":     proc.Topic().String(),
			"status":      "ready",
			"description": proc.Description(),
		})
	}
}

// Register binds all registered topics onto the router group as
// POST/GET /webhooks/<topic> pairs.
func (h *Handler) Register(rg *gin.RouterGroup) {
	for _, topic := range h.registry.Topics() {
		proc, _ := h.registry.Get(topic)
		rg.POST("/"+topic.RoutePath(), h.HandleEvent(proc))
		rg.GET("/"+topic.RoutePath(), h.HandleHealth(proc))
	}
}
