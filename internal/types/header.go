package types

const (
	HeaderHmacSignature = "X-Shopify-Hmac-Sha256"
	HeaderShopDomain    = "X-Shopify-Shop-Domain"
	HeaderTopic         = "X-Shopify-Topic"
	HeaderWebhookID     = "X-Shopify-Webhook-Id"
	HeaderRequestID     = "X-Request-ID"
	HeaderAPIKey        = "X-API-Key"
)
