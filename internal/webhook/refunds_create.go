package webhook

import (
	"context"
	"fmt"

	"github.com/pointloop/pointloop/internal/cache"
	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/events"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/loyalty"
	"github.com/pointloop/pointloop/internal/points"
	"github.com/pointloop/pointloop/internal/types"
	"github.com/pointloop/pointloop/internal/webhook/dto"
)

// RefundsCreateProcessor deducts loyalty points proportionally to the
// refunded share of the original order. The deduction is keyed on the
// refund id, so a redelivered refund never double-debits. When the original
// order cannot be resolved the refund is a no-op, not a failure: the order
// may predate the app install or belong to a guest checkout.
type RefundsCreateProcessor struct {
	client     loyalty.Client
	calculator *points.Calculator
	publisher  events.Publisher
	orderCache cache.Cache
	cacheTTL   config.CacheConfig
	logger     *logger.Logger
}

// NewRefundsCreateProcessor creates the refunds/create processor.
func NewRefundsCreateProcessor(
	client loyalty.Client,
	calculator *points.Calculator,
	publisher events.Publisher,
	orderCache cache.Cache,
	cfg *config.Configuration,
	log *logger.Logger,
) *RefundsCreateProcessor {
	return &RefundsCreateProcessor{
		client:     client,
		calculator: calculator,
		publisher:  publisher,
		orderCache: orderCache,
		cacheTTL:   cfg.Cache,
		logger:     log,
	}
}

func (p *RefundsCreateProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicRefundsCreate
}

func (p *RefundsCreateProcessor) Description() string {
	return "deducts loyalty points when a refund is issued"
}

func (p *RefundsCreateProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	refund, err := dto.ParseRefundInfo(event.RawBody)
	if err != nil {
		p.logger.Warnw("invalid refunds/create payload",
			"shop_domain", event.ShopDomain,
			"error", err)
		return FailureFromError(err)
	}

	order := p.lookupOrder(ctx, refund.OrderID)
	if order == nil {
		p.logger.Infow("original order not found, skipping deduction",
			"refund_id", refund.RefundID,
			"order_id", refund.OrderID)
		return SuccessResult("original order not found: no points deducted", map[string]interface{}{
			"refund_id":       refund.RefundID,
			"order_id":        refund.OrderID,
			"points_deducted": 0,
		})
	}

	if order.CustomerID == "" {
		p.logger.Infow("original order has no customer, skipping deduction",
			"refund_id", refund.RefundID,
			"order_id", refund.OrderID)
		return SuccessResult("original order has no customer: no points deducted", map[string]interface{}{
			"refund_id":       refund.RefundID,
			"order_id":        refund.OrderID,
			"points_deducted": 0,
		})
	}

	calc := p.calculator.CalculateRefundDeduction(refund.TotalRefundAmount, order.TotalPrice, order.PointsAwarded)
	if calc.Points == 0 {
		p.logger.Infow("refund requires no deduction",
			"refund_id", refund.RefundID,
			"order_id", refund.OrderID,
			"reason", calc.Reason)
		return SuccessResult(fmt.Sprintf("no points deducted: %s", calc.Reason), map[string]interface{}{
			"refund_id":       refund.RefundID,
			"order_id":        refund.OrderID,
			"points_deducted": 0,
		})
	}

	deductResp, err := p.client.DeductPoints(ctx, &loyalty.DeductPointsRequest{
		CustomerID:  order.CustomerID,
		Points:      calc.Points,
		Reason:      calc.Reason,
		ReferenceID: refund.RefundID,
		Metadata: map[string]interface{}{
			"order_id":        refund.OrderID,
			"refund_amount":   refund.TotalRefundAmount.String(),
			"order_total":     order.TotalPrice.String(),
			"original_points": order.PointsAwarded,
			"shop_domain":     event.ShopDomain,
		},
	})
	if err != nil {
		p.logger.Errorw("failed to deduct points",
			"refund_id", refund.RefundID,
			"order_id", refund.OrderID,
			"customer_id", order.CustomerID,
			"points", calc.Points,
			"error", err)
		return FailureFromError(err)
	}

	tierResp, err := p.client.EvaluateTier(ctx, &loyalty.TierEvaluationRequest{
		CustomerID: order.CustomerID,
		Trigger:    string(types.TierTriggerRefundProcessed),
		Metadata: map[string]interface{}{
			"refund_id":       refund.RefundID,
			"points_deducted": calc.Points,
		},
	})
	if err != nil {
		p.logger.Errorw("failed to trigger tier evaluation",
			"refund_id", refund.RefundID,
			"customer_id", order.CustomerID,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventPointsDeducted, event.ShopDomain)
	evt.CustomerID = order.CustomerID
	evt.Points = calc.Points
	evt.Reason = calc.Reason
	evt.ReferenceID = refund.RefundID
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "refund_id", refund.RefundID, "error", pubErr)
	}

	return SuccessResult(fmt.Sprintf("deducted %d points", calc.Points), map[string]interface{}{
		"refund_id":       refund.RefundID,
		"order_id":        refund.OrderID,
		"customer_id":     order.CustomerID,
		"points_deducted": calc.Points,
		"reason":          calc.Reason,
		"new_balance":     deductResp.NewBalance,
		"transaction_id":  deductResp.TransactionID,
		"current_tier":    tierResp.CurrentTier,
		"tier_changed":    tierResp.TierChanged,
	})
}

// lookupOrder resolves the original order record, consulting the local TTL
// cache before the backend. A nil return means the order is unavailable.
func (p *RefundsCreateProcessor) lookupOrder(ctx context.Context, orderID string) *loyalty.OrderRecord {
	cacheKey := "order:" + orderID

	if p.orderCache != nil {
		if value, ok := p.orderCache.Get(ctx, cacheKey); ok {
			if record, ok := cache.TypedValue[loyalty.OrderRecord](value); ok {
				return record
			}
		}
	}

	record, err := p.client.GetOrder(ctx, orderID)
	if err != nil {
		p.logger.Warnw("order lookup failed",
			"order_id", orderID,
			"error", err)
		return nil
	}

	if p.orderCache != nil {
		p.orderCache.Set(ctx, cacheKey, record, p.cacheTTL.OrderLookupTTL)
	}
	return record
}
