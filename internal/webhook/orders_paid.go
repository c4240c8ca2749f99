package webhook

import (
	"context"
	"fmt"

	"github.com/pointloop/pointloop/internal/events"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/loyalty"
	"github.com/pointloop/pointloop/internal/points"
	"github.com/pointloop/pointloop/internal/types"
	"github.com/pointloop/pointloop/internal/webhook/dto"
)

// OrdersPaidProcessor awards loyalty points for paid orders and triggers a
// tier re-evaluation. Point math is a pure function of the payload, so a
// redelivered order computes the identical delta, and the backend dedupes
// the award by reference_id = order id.
type OrdersPaidProcessor struct {
	client     loyalty.Client
	calculator *points.Calculator
	publisher  events.Publisher
	logger     *logger.Logger
}

// NewOrdersPaidProcessor creates the orders/paid processor.
func NewOrdersPaidProcessor(
	client loyalty.Client,
	calculator *points.Calculator,
	publisher events.Publisher,
	log *logger.Logger,
) *OrdersPaidProcessor {
	return &OrdersPaidProcessor{
		client:     client,
		calculator: calculator,
		publisher:  publisher,
		logger:     log,
	}
}

func (p *OrdersPaidProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicOrdersPaid
}

func (p *OrdersPaidProcessor) Description() string {
	return "awards loyalty points when an order is paid"
}

func (p *OrdersPaidProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	order, err := dto.ParseOrderInfo(event.RawBody)
	if err != nil {
		p.logger.Warnw("invalid orders/paid payload",
			"shop_domain", event.ShopDomain,
			"error", err)
		return FailureFromError(err)
	}

	// Guest checkout carries no customer to credit; this is a normal
	// outcome, not an error.
	if order.CustomerID == "" {
		p.logger.Infow("skipping guest checkout order",
			"order_id", order.OrderID,
			"shop_domain", event.ShopDomain)
		return SuccessResult("guest checkout: no loyalty points awarded", map[string]interface{}{
			"order_id":       order.OrderID,
			"points_awarded": 0,
		})
	}

	calc := p.calculator.CalculateOrderPoints(order)
	if calc.Points == 0 {
		p.logger.Infow("order earned no points",
			"order_id", order.OrderID,
			"total_price", order.TotalPrice,
			"reason", calc.Reason)
		return SuccessResult(fmt.Sprintf("no points awarded: %s", calc.Reason), map[string]interface{}{
			"order_id":       order.OrderID,
			"points_awarded": 0,
		})
	}

	awardResp, err := p.client.AwardPoints(ctx, &loyalty.AwardPointsRequest{
		CustomerID:  order.CustomerID,
		Points:      calc.Points,
		Reason:      calc.Reason,
		ReferenceID: order.OrderID,
		Metadata: map[string]interface{}{
			"order_number":    order.OrderNumber,
			"total_price":     order.TotalPrice.String(),
			"currency":        order.Currency,
			"shop_domain":     event.ShopDomain,
			"line_item_count": len(order.LineItems),
		},
	})
	if err != nil {
		p.logger.Errorw("failed to award points",
			"order_id", order.OrderID,
			"customer_id", order.CustomerID,
			"points", calc.Points,
			"error", err)
		return FailureFromError(err)
	}

	tierResp, err := p.client.EvaluateTier(ctx, &loyalty.TierEvaluationRequest{
		CustomerID: order.CustomerID,
		Trigger:    string(types.TierTriggerOrderCompleted),
		Metadata: map[string]interface{}{
			"order_id":       order.OrderID,
			"points_awarded": calc.Points,
		},
	})
	if err != nil {
		// Retrying the whole delivery is safe: the award is idempotent on
		// reference_id, and the tier evaluation must not be lost.
		p.logger.Errorw("failed to trigger tier evaluation",
			"order_id", order.OrderID,
			"customer_id", order.CustomerID,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventPointsEarned, event.ShopDomain)
	evt.CustomerID = order.CustomerID
	evt.Points = calc.Points
	evt.Reason = calc.Reason
	evt.ReferenceID = order.OrderID
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "order_id", order.OrderID, "error", pubErr)
	}

	return SuccessResult(fmt.Sprintf("awarded %d points", calc.Points), map[string]interface{}{
		"order_id":       order.OrderID,
		"customer_id":    order.CustomerID,
		"points_awarded": calc.Points,
		"reason":         calc.Reason,
		"new_balance":    awardResp.NewBalance,
		"transaction_id": awardResp.TransactionID,
		"current_tier":   tierResp.CurrentTier,
		"tier_changed":   tierResp.TierChanged,
	})
}
