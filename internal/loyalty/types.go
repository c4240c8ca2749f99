package loyalty

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a points ledger mutation.
type TransactionType string

const (
	TransactionTypeEarned   TransactionType = "earned"
	TransactionTypeDeducted TransactionType = "deducted"
)

// AwardPointsRequest credits points to a customer. ReferenceID is the
// commerce platform's own event identifier and is the idempotency key the
// backend dedupes redeliveries on.
type AwardPointsRequest struct {
	CustomerID      string                 `json:"customer_id"`
	Points          int64                  `json:"points"`
	TransactionType TransactionType        `json:"transaction_type"`
	Reason          string                 `json:"reason"`
	ReferenceID     string                 `json:"reference_id"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// DeductPointsRequest debits points from a customer, keyed by the refund's
// identifier for idempotency.
type DeductPointsRequest struct {
	CustomerID      string                 `json:"customer_id"`
	Points          int64                  `json:"points"`
	TransactionType TransactionType        `json:"transaction_type"`
	Reason          string                 `json:"reason"`
	ReferenceID     string                 `json:"reference_id"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// TierEvaluationRequest asks the backend to recompute a customer's tier
// after a points-affecting event.
type TierEvaluationRequest struct {
	CustomerID string                 `json:"customer_id"`
	Trigger    string                 `json:"trigger"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// PointsTransactionResponse echoes the backend's view of a ledger mutation.
type PointsTransactionResponse struct {
	Success        bool   `json:"success"`
	CustomerID     string `json:"customer_id"`
	PointsAwarded  int64  `json:"points_awarded,omitempty"`
	PointsDeducted int64  `json:"points_deducted,omitempty"`
	NewBalance     int64  `json:"new_balance"`
	TransactionID  string `json:"transaction_id"`
	ProcessedAt    string `json:"processed_at"`
}

// TierEvaluationResponse reports the outcome of a tier re-evaluation.
type TierEvaluationResponse struct {
	Success     bool   `json:"success"`
	CustomerID  string `json:"customer_id"`
	CurrentTier string `json:"current_tier"`
	TierChanged bool   `json:"tier_changed"`
	EvaluatedAt string `json:"evaluated_at"`
}

// OrderRecord is the backend's record of a previously processed order,
// fetched when reconciling refunds against the original award.
type OrderRecord struct {
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	PointsAwarded int64           `json:"points_awarded"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ProcessedAt   string          `json:"processed_at"`
}

// CustomerProfileRequest creates a zero-balance loyalty profile.
type CustomerProfileRequest struct {
	CustomerID    string `json:"customer_id"`
	Email         string `json:"email,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Shop          string `json:"shop"`
	InitialPoints int64  `json:"initial_points"`
	CreatedVia    string `json:"created_via"`
	WebhookSource string `json:"webhook_source,omitempty"`
}

// ComplianceRequest covers customer redaction, customer data export and
// shop redaction.
type ComplianceRequest struct {
	CustomerID    string    `json:"customer_id,omitempty"`
	ShopDomain    string    `json:"shop_domain,omitempty"`
	ShopID        string    `json:"shop_id,omitempty"`
	RedactionType string    `json:"redaction_type,omitempty"`
	ExportFormat  string    `json:"export_format,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
	WebhookSource string    `json:"webhook_source"`
}

// AppUninstallRequest triggers soft-delete cleanup, preserving data for a
// possible reinstall.
type AppUninstallRequest struct {
	ShopDomain    string    `json:"shop_domain"`
	ShopID        string    `json:"shop_id,omitempty"`
	UninstalledAt time.Time `json:"uninstalled_at"`
	CleanupType   string    `json:"cleanup_type"`
	WebhookSource string    `json:"webhook_source"`
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}
