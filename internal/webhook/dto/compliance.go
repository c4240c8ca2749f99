package dto

import (
	"encoding/json"

	"github.com/samber/lo"

	ierr "github.com/pointloop/pointloop/internal/errors"
)

// CustomerComplianceInfo is the normalized view of the customers/redact and
// customers/data_request payloads.
type CustomerComplianceInfo struct {
	CustomerID     string
	CustomerEmail  string
	ShopID         string
	ShopDomain     string
	OrdersToRedact []string
}

// ShopComplianceInfo is the normalized view of the shop/redact and
// app/uninstalled payloads.
type ShopComplianceInfo struct {
	ShopID     string
	ShopDomain string
}

// CustomerCreateInfo is the normalized view of a customers/create payload.
type CustomerCreateInfo struct {
	CustomerID string
	Email      string
	FirstName  string
	LastName   string
}

type customerCompliancePayload struct {
	ShopID     json.Number `json:"shop_id"`
	ShopDomain string      `json:"shop_domain"`
	Customer   struct {
		ID    json.Number `json:"id"`
		Email string      `json:"email"`
	} `json:"customer"`
	OrdersToRedact  []json.Number `json:"orders_to_redact"`
	OrdersRequested []json.Number `json:"orders_requested"`
}

type shopCompliancePayload struct {
	ShopID     json.Number `json:"shop_id"`
	ShopDomain string      `json:"shop_domain"`
	// app/uninstalled delivers the shop resource itself
	ID     json.Number `json:"id"`
	Domain string      `json:"domain"`
}

type customerCreatePayload struct {
	ID        json.Number `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// ParseCustomerComplianceInfo decodes a customer compliance payload and
// requires a customer id.
func ParseCustomerComplianceInfo(rawBody []byte) (*CustomerComplianceInfo, error) {
	var payload customerCompliancePayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid compliance payload").
			Mark(ierr.ErrValidation)
	}

	if payload.Customer.ID.String() == "" {
		return nil, ierr.NewError("compliance payload missing customer id").
			WithHint("Compliance request is missing the customer identifier").
			WithReportableDetails(map[string]interface{}{
				"missing_fields": []string{"customer.id"},
			}).
			Mark(ierr.ErrValidation)
	}

	info := &CustomerComplianceInfo{
		CustomerID:    payload.Customer.ID.String(),
		CustomerEmail: payload.Customer.Email,
		ShopID:        payload.ShopID.String(),
		ShopDomain:    payload.ShopDomain,
	}
	orders := payload.OrdersToRedact
	if len(orders) == 0 {
		orders = payload.OrdersRequested
	}
	info.OrdersToRedact = lo.Map(orders, func(o json.Number, _ int) string {
		return o.String()
	})
	return info, nil
}

// ParseShopComplianceInfo decodes a shop-scoped payload. The shop domain is
// required; it may arrive in the body (shop/redact) or only via the shop
// domain header (app/uninstalled), so headerShopDomain is the fallback.
func ParseShopComplianceInfo(rawBody []byte, headerShopDomain string) (*ShopComplianceInfo, error) {
	var payload shopCompliancePayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid compliance payload").
			Mark(ierr.ErrValidation)
	}

	info := &ShopComplianceInfo{
		ShopID:     payload.ShopID.String(),
		ShopDomain: payload.ShopDomain,
	}
	if info.ShopID == "" {
		info.ShopID = payload.ID.String()
	}
	if info.ShopDomain == "" {
		info.ShopDomain = payload.Domain
	}
	if info.ShopDomain == "" {
		info.ShopDomain = headerShopDomain
	}

	if info.ShopDomain == "" {
		return nil, ierr.NewError("compliance payload missing shop domain").
			WithHint("Request is missing the shop domain").
			WithReportableDetails(map[string]interface{}{
				"missing_fields": []string{"shop_domain"},
			}).
			Mark(ierr.ErrValidation)
	}
	return info, nil
}

// ParseCustomerCreateInfo decodes a customers/create payload and requires a
// customer id.
func ParseCustomerCreateInfo(rawBody []byte) (*CustomerCreateInfo, error) {
	var payload customerCreatePayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid customer payload").
			Mark(ierr.ErrValidation)
	}

	if payload.ID.String() == "" {
		return nil, ierr.NewError("customer payload missing id").
			WithHint("Customer is missing the id field").
			WithReportableDetails(map[string]interface{}{
				"missing_fields": []string{"id"},
			}).
			Mark(ierr.ErrValidation)
	}

	return &CustomerCreateInfo{
		CustomerID: payload.ID.String(),
		Email:      payload.Email,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
	}, nil
}
