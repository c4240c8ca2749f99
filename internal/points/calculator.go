package points

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/webhook/dto"
)

// CalculationResult is the outcome of a points computation. Points is
// always non-negative; Reason is a human-readable audit trail listing the
// components that applied.
type CalculationResult struct {
	Points int64  `json:"points"`
	Reason string `json:"reason"`
}

// fullRefundRatio is the threshold above which a refund is described as a
// full refund. It affects messaging only, never the deduction formula.
var fullRefundRatio = decimal.NewFromFloat(0.99)

// Calculator computes point deltas from the configured earning rules. It is
// a pure function of its inputs: the same order always yields the same
// result, which keeps redeliveries reproducible and auditable.
type Calculator struct {
	minimumOrderAmount  decimal.Decimal
	largeOrderThreshold decimal.Decimal
	largeOrderBonusRate decimal.Decimal
	categoryMultipliers map[string]decimal.Decimal
}

// NewCalculator builds a Calculator from configuration. Category names are
// normalized to lower case; multipliers at or below 1 carry no bonus and
// are dropped.
func NewCalculator(cfg config.PointsConfig) *Calculator {
	multipliers := make(map[string]decimal.Decimal, len(cfg.CategoryMultipliers))
	for category, m := range cfg.CategoryMultipliers {
		mult := decimal.NewFromFloat(m)
		if mult.GreaterThan(decimal.NewFromInt(1)) {
			multipliers[normalizeCategory(category)] = mult
		}
	}
	return &Calculator{
		minimumOrderAmount:  decimal.NewFromFloat(cfg.MinimumOrderAmount),
		largeOrderThreshold: decimal.NewFromFloat(cfg.LargeOrderThreshold),
		largeOrderBonusRate: decimal.NewFromFloat(cfg.LargeOrderBonusRate),
		categoryMultipliers: multipliers,
	}
}

// CalculateOrderPoints computes the points earned for a paid order.
// All fractional components are floored, never rounded up, so a customer
// is never over-credited.
func (c *Calculator) CalculateOrderPoints(order *dto.OrderInfo) CalculationResult {
	if order.TotalPrice.LessThan(c.minimumOrderAmount) {
		return CalculationResult{
			Points: 0,
			Reason: fmt.Sprintf("order total %s below minimum threshold %s", order.TotalPrice, c.minimumOrderAmount),
		}
	}

	base := order.TotalPrice.Floor().IntPart()
	total := base
	reasons := []string{fmt.Sprintf("%d base points for order total %s", base, order.TotalPrice)}

	if order.TotalPrice.GreaterThanOrEqual(c.largeOrderThreshold) {
		bonus := order.TotalPrice.Mul(c.largeOrderBonusRate).Floor().IntPart()
		if bonus > 0 {
			total += bonus
			reasons = append(reasons, fmt.Sprintf("%d large order bonus (total >= %s)", bonus, c.largeOrderThreshold))
		}
	}

	for _, item := range order.LineItems {
		mult, ok := c.categoryMultipliers[normalizeCategory(item.ProductType)]
		if !ok {
			continue
		}
		// Only the incremental portion beyond the base 1x rate; the base
		// rate is already counted inside floor(totalPrice).
		extra := mult.Sub(decimal.NewFromInt(1))
		bonus := item.Price.Mul(decimal.NewFromInt(item.Quantity)).Mul(extra).Floor().IntPart()
		if bonus > 0 {
			total += bonus
			reasons = append(reasons, fmt.Sprintf("%d category bonus for %q (x%s)", bonus, normalizeCategory(item.ProductType), mult))
		}
	}

	return CalculationResult{
		Points: total,
		Reason: strings.Join(reasons, "; "),
	}
}

// CalculateRefundDeduction computes the points to pull back for a refund.
// The deduction is proportional to the refunded share of the order total
// and never exceeds the points originally awarded.
func (c *Calculator) CalculateRefundDeduction(refundAmount, orderTotal decimal.Decimal, originalPoints int64) CalculationResult {
	if refundAmount.LessThanOrEqual(decimal.Zero) || orderTotal.LessThanOrEqual(decimal.Zero) {
		return CalculationResult{
			Points: 0,
			Reason: "invalid amount: refund and order totals must be positive",
		}
	}

	ratio := refundAmount.Div(orderTotal)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}

	deduct := decimal.NewFromInt(originalPoints).Mul(ratio).Floor().IntPart()

	if ratio.GreaterThanOrEqual(fullRefundRatio) {
		return CalculationResult{
			Points: deduct,
			Reason: fmt.Sprintf("full refund: deducting %d of %d points", deduct, originalPoints),
		}
	}
	return CalculationResult{
		Points: deduct,
		Reason: fmt.Sprintf("partial refund of %s (ratio %s): deducting %d of %d points", refundAmount, ratio.Round(4), deduct, originalPoints),
	}
}

func normalizeCategory(productType string) string {
	return strings.ToLower(strings.TrimSpace(productType))
}
