package types

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// WebhookTopic is the commerce event type a webhook delivery represents.
type WebhookTopic string

const (
	WebhookTopicOrdersPaid           WebhookTopic = "orders/paid"
	WebhookTopicRefundsCreate        WebhookTopic = "refunds/create"
	WebhookTopicCustomersCreate      WebhookTopic = "customers/create"
	WebhookTopicCustomersRedact      WebhookTopic = "customers/redact"
	WebhookTopicCustomersDataRequest WebhookTopic = "customers/data_request"
	WebhookTopicShopRedact           WebhookTopic = "shop/redact"
	WebhookTopicAppUninstalled       WebhookTopic = "app/uninstalled"
)

func (t WebhookTopic) String() string {
	return string(t)
}

// RoutePath returns the URL path segment the topic is served under,
// e.g. "orders/paid" -> "orders-paid".
func (t WebhookTopic) RoutePath() string {
	return strings.ReplaceAll(strings.ReplaceAll(string(t), "/", "-"), "_", "-")
}

// TierEvaluationTrigger identifies the points-affecting event that caused a
// tier re-evaluation request.
type TierEvaluationTrigger string

const (
	TierTriggerOrderCompleted  TierEvaluationTrigger = "order_completed"
	TierTriggerRefundProcessed TierEvaluationTrigger = "refund_processed"
)

// LoyaltyEventType classifies entries on the loyalty activity stream.
type LoyaltyEventType string

const (
	LoyaltyEventPointsEarned     LoyaltyEventType = "points_earned"
	LoyaltyEventPointsDeducted   LoyaltyEventType = "points_deducted"
	LoyaltyEventCustomerCreated  LoyaltyEventType = "customer_created"
	LoyaltyEventCustomerRedacted LoyaltyEventType = "customer_redacted"
	LoyaltyEventDataExported     LoyaltyEventType = "data_exported"
	LoyaltyEventShopRedacted     LoyaltyEventType = "shop_redacted"
	LoyaltyEventAppUninstalled   LoyaltyEventType = "app_uninstalled"
)

// GenerateULID returns a lexicographically sortable unique identifier.
func GenerateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

// GenerateRequestID returns an identifier for an inbound HTTP request.
func GenerateRequestID() string {
	return "req_" + GenerateULID()
}

// GenerateEventID returns an identifier for a loyalty activity event.
func GenerateEventID() string {
	return "evt_" + GenerateULID()
}
