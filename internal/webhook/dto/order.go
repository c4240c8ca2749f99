package dto

import (
	"encoding/json"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	ierr "github.com/pointloop/pointloop/internal/errors"
)

// OrderInfo is the normalized view of an orders/paid payload. It lives for
// the duration of a single webhook delivery and is never persisted.
type OrderInfo struct {
	OrderID     string
	OrderNumber string
	TotalPrice  decimal.Decimal
	Currency    string
	LineItems   []LineItem
	CustomerID  string
}

// LineItem carries the fields needed for category-bonus computation.
type LineItem struct {
	ProductType string
	Quantity    int64
	Price       decimal.Decimal
}

// orderPayload mirrors the platform's orders/paid JSON. Identifiers arrive
// as numbers and money as strings; both are normalized during mapping.
type orderPayload struct {
	ID          json.Number       `json:"id"`
	OrderNumber json.Number       `json:"order_number"`
	TotalPrice  *decimal.Decimal  `json:"total_price"`
	Currency    string            `json:"currency"`
	Customer    *customerRef      `json:"customer"`
	LineItems   []lineItemPayload `json:"line_items"`
}

type customerRef struct {
	ID    json.Number `json:"id"`
	Email string      `json:"email"`
}

type lineItemPayload struct {
	ProductType string           `json:"product_type"`
	Quantity    int64            `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

// ParseOrderInfo decodes an orders/paid body and validates the required
// fields, naming every missing field in the returned validation error.
func ParseOrderInfo(rawBody []byte) (*OrderInfo, error) {
	var payload orderPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid order payload").
			Mark(ierr.ErrValidation)
	}

	var missing []string
	if payload.ID.String() == "" {
		missing = append(missing, "order_id")
	}
	if payload.TotalPrice == nil {
		missing = append(missing, "total_price")
	}
	if len(missing) > 0 {
		return nil, ierr.NewError("order payload missing required fields").
			WithHint("Order is missing required fields").
			WithReportableDetails(map[string]interface{}{
				"missing_fields": missing,
			}).
			Mark(ierr.ErrValidation)
	}

	info := &OrderInfo{
		OrderID:     payload.ID.String(),
		OrderNumber: payload.OrderNumber.String(),
		TotalPrice:  *payload.TotalPrice,
		Currency:    payload.Currency,
	}
	if payload.Customer != nil {
		info.CustomerID = payload.Customer.ID.String()
	}
	info.LineItems = lo.Map(payload.LineItems, func(li lineItemPayload, _ int) LineItem {
		item := LineItem{
			ProductType: li.ProductType,
			Quantity:    li.Quantity,
		}
		if li.Price != nil {
			item.Price = *li.Price
		}
		return item
	})

	return info, nil
}
