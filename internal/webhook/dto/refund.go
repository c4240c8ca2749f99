package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/pointloop/pointloop/internal/errors"
)

// RefundInfo is the normalized view of a refunds/create payload.
type RefundInfo struct {
	RefundID          string
	OrderID           string
	TotalRefundAmount decimal.Decimal
	RefundLineItems   []RefundLineItem
	CreatedAt         *time.Time
}

// RefundLineItem describes one refunded line.
type RefundLineItem struct {
	Quantity int64
	Subtotal decimal.Decimal
}

type refundPayload struct {
	ID              json.Number             `json:"id"`
	OrderID         json.Number             `json:"order_id"`
	CreatedAt       *time.Time              `json:"created_at"`
	Transactions    []refundTransaction     `json:"transactions"`
	RefundLineItems []refundLineItemPayload `json:"refund_line_items"`
}

type refundTransaction struct {
	Amount *decimal.Decimal `json:"amount"`
	Kind   string           `json:"kind"`
}

type refundLineItemPayload struct {
	Quantity int64            `json:"quantity"`
	Subtotal *decimal.Decimal `json:"subtotal"`
}

// ParseRefundInfo decodes a refunds/create body and validates the required
// identifiers. The refunded amount is the sum of the refund transactions;
// when no transactions are present it falls back to the sum of refunded
// line subtotals.
func ParseRefundInfo(rawBody []byte) (*RefundInfo, error) {
	var payload refundPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid refund payload").
			Mark(ierr.ErrValidation)
	}

	var missing []string
	if payload.ID.String() == "" {
		missing = append(missing, "refund_id")
	}
	if payload.OrderID.String() == "" {
		missing = append(missing, "order_id")
	}
	if len(missing) > 0 {
		return nil, ierr.NewError("refund payload missing required fields").
			WithHint("Refund is missing required fields").
			WithReportableDetails(map[string]interface{}{
				"missing_fields": missing,
			}).
			Mark(ierr.ErrValidation)
	}

	info := &RefundInfo{
		RefundID:  payload.ID.String(),
		OrderID:   payload.OrderID.String(),
		CreatedAt: payload.CreatedAt,
	}

	total := decimal.Zero
	for _, tx := range payload.Transactions {
		if tx.Amount != nil {
			total = total.Add(*tx.Amount)
		}
	}

	lineTotal := decimal.Zero
	for _, li := range payload.RefundLineItems {
		item := RefundLineItem{Quantity: li.Quantity}
		if li.Subtotal != nil {
			item.Subtotal = *li.Subtotal
			lineTotal = lineTotal.Add(*li.Subtotal)
		}
		info.RefundLineItems = append(info.RefundLineItems, item)
	}

	if total.IsZero() {
		total = lineTotal
	}
	info.TotalRefundAmount = total

	return info, nil
}
