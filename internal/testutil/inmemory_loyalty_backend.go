package testutil

import (
	"context"
	"sync"
	"time"

	ierr "github.com/pointloop/pointloop/internal/errors"
	"github.com/pointloop/pointloop/internal/loyalty"
	"github.com/pointloop/pointloop/internal/types"
)

// InMemoryLoyaltyBackend implements loyalty.Client against in-memory state,
// recording every call so tests can assert what the processors sent. Award
// and deduct honor reference_id idempotency the way the real backend does.
type InMemoryLoyaltyBackend struct {
	mu sync.Mutex

	orders   map[string]*loyalty.OrderRecord
	balances map[string]int64

	Awards          []*loyalty.AwardPointsRequest
	Deductions      []*loyalty.DeductPointsRequest
	TierEvaluations []*loyalty.TierEvaluationRequest
	Profiles        []*loyalty.CustomerProfileRequest
	Redactions      []*loyalty.ComplianceRequest
	Exports         []*loyalty.ComplianceRequest
	ShopRedactions  []*loyalty.ComplianceRequest
	Uninstalls      []*loyalty.AppUninstallRequest

	// OrderLookups counts GetOrder calls that reached the backend, letting
	// tests assert that the order cache absorbed a redelivery.
	OrderLookups int

	seenReferences map[string]*loyalty.PointsTransactionResponse

	// FailWith, when set, makes every call return this error.
	FailWith error
}

// NewInMemoryLoyaltyBackend creates an empty in-memory loyalty backend.
func NewInMemoryLoyaltyBackend() *InMemoryLoyaltyBackend {
	return &InMemoryLoyaltyBackend{
		orders:         make(map[string]*loyalty.OrderRecord),
		balances:       make(map[string]int64),
		seenReferences: make(map[string]*loyalty.PointsTransactionResponse),
	}
}

// SeedOrder registers a previously processed order for refund lookups.
func (b *InMemoryLoyaltyBackend) SeedOrder(order *loyalty.OrderRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[order.OrderID] = order
	if order.CustomerID != "" {
		b.balances[order.CustomerID] += order.PointsAwarded
	}
}

// Balance returns a customer's current points balance.
func (b *InMemoryLoyaltyBackend) Balance(customerID string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[customerID]
}

func (b *InMemoryLoyaltyBackend) AwardPoints(ctx context.Context, req *loyalty.AwardPointsRequest) (*loyalty.PointsTransactionResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.Awards = append(b.Awards, req)
	if resp, ok := b.seenReferences["award:"+req.ReferenceID]; ok {
		return resp, nil
	}

	b.balances[req.CustomerID] += req.Points
	resp := &loyalty.PointsTransactionResponse{
		Success:       true,
		CustomerID:    req.CustomerID,
		PointsAwarded: req.Points,
		NewBalance:    b.balances[req.CustomerID],
		TransactionID: "txn_" + types.GenerateULID(),
		ProcessedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	b.seenReferences["award:"+req.ReferenceID] = resp
	return resp, nil
}

func (b *InMemoryLoyaltyBackend) DeductPoints(ctx context.Context, req *loyalty.DeductPointsRequest) (*loyalty.PointsTransactionResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.Deductions = append(b.Deductions, req)
	if resp, ok := b.seenReferences["deduct:"+req.ReferenceID]; ok {
		return resp, nil
	}

	b.balances[req.CustomerID] -= req.Points
	resp := &loyalty.PointsTransactionResponse{
		Success:        true,
		CustomerID:     req.CustomerID,
		PointsDeducted: req.Points,
		NewBalance:     b.balances[req.CustomerID],
		TransactionID:  "txn_" + types.GenerateULID(),
		ProcessedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	b.seenReferences["deduct:"+req.ReferenceID] = resp
	return resp, nil
}

func (b *InMemoryLoyaltyBackend) EvaluateTier(ctx context.Context, req *loyalty.TierEvaluationRequest) (*loyalty.TierEvaluationResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.TierEvaluations = append(b.TierEvaluations, req)
	return &loyalty.TierEvaluationResponse{
		Success:     true,
		CustomerID:  req.CustomerID,
		CurrentTier: "bronze",
		TierChanged: false,
		EvaluatedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (b *InMemoryLoyaltyBackend) GetOrder(ctx context.Context, orderID string) (*loyalty.OrderRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.OrderLookups++
	order, ok := b.orders[orderID]
	if !ok {
		return nil, ierr.NewErrorf("order not found: %s", orderID).
			WithHint("Resource not found in loyalty backend").
			Mark(ierr.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (b *InMemoryLoyaltyBackend) CreateCustomerProfile(ctx context.Context, req *loyalty.CustomerProfileRequest) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.Profiles = append(b.Profiles, req)
	b.balances[req.CustomerID] = req.InitialPoints
	return map[string]interface{}{
		"success":     true,
		"customer_id": req.CustomerID,
	}, nil
}

func (b *InMemoryLoyaltyBackend) RedactCustomer(ctx context.Context, req *loyalty.ComplianceRequest) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.Redactions = append(b.Redactions, req)
	delete(b.balances, req.CustomerID)
	return map[string]interface{}{
		"success":     true,
		"customer_id": req.CustomerID,
	}, nil
}

func (b *InMemoryLoyaltyBackend) ExportCustomerData(ctx context.Context, req *loyalty.ComplianceRequest) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.Exports = append(b.Exports, req)
	return map[string]interface{}{
		"success":     true,
		"customer_id": req.CustomerID,
		"points":      b.balances[req.CustomerID],
	}, nil
}

func (b *InMemoryLoyaltyBackend) RedactShop(ctx context.Context, req *loyalty.ComplianceRequest) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.ShopRedactions = append(b.ShopRedactions, req)
	return map[string]interface{}{
		"success":     true,
		"shop_domain": req.ShopDomain,
	}, nil
}

func (b *InMemoryLoyaltyBackend) HandleAppUninstall(ctx context.Context, req *loyalty.AppUninstallRequest) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return nil, b.FailWith
	}

	b.Uninstalls = append(b.Uninstalls, req)
	return map[string]interface{}{
		"success":     true,
		"shop_domain": req.ShopDomain,
		"cleanup":     req.CleanupType,
	}, nil
}
