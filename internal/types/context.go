package types

import "context"

type ContextKey string

const (
	CtxRequestID  ContextKey = "ctx_request_id"
	CtxShopDomain ContextKey = "ctx_shop_domain"
	CtxTopic      ContextKey = "ctx_topic"
)

func GetRequestID(ctx context.Context) string {
	return getString(ctx, CtxRequestID)
}

func GetShopDomain(ctx context.Context) string {
	return getString(ctx, CtxShopDomain)
}

func GetTopic(ctx context.Context) string {
	return getString(ctx, CtxTopic)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func SetShopDomain(ctx context.Context, shopDomain string) context.Context {
	return context.WithValue(ctx, CtxShopDomain, shopDomain)
}

func SetTopic(ctx context.Context, topic string) context.Context {
	return context.WithValue(ctx, CtxTopic, topic)
}

func getString(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
