package points

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/webhook/dto"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.GetDefaultConfig().Points)
}

func TestCalculateOrderPoints(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name       string
		totalPrice string
		lineItems  []dto.LineItem
		want       int64
	}{
		{
			name:       "below minimum threshold",
			totalPrice: "0.99",
			want:       0,
		},
		{
			name:       "zero total",
			totalPrice: "0",
			want:       0,
		},
		{
			name:       "exact minimum",
			totalPrice: "1.00",
			want:       1,
		},
		{
			name:       "mid range floors fractional cents",
			totalPrice: "42.99",
			want:       42,
		},
		{
			name:       "just under large order threshold",
			totalPrice: "99.99",
			want:       99,
		},
		{
			name:       "large order bonus at 150",
			totalPrice: "150.00",
			want:       165, // 150 + floor(150*0.1)
		},
		{
			name:       "large order bonus at exactly 100",
			totalPrice: "100.00",
			want:       110,
		},
		{
			name:       "electronics category bonus",
			totalPrice: "50.00",
			lineItems: []dto.LineItem{
				{ProductType: "electronics", Quantity: 1, Price: decimal.RequireFromString("50.00")},
			},
			want: 100, // floor(50) + floor(50*1*(2-1))
		},
		{
			name:       "category name is case insensitive",
			totalPrice: "50.00",
			lineItems: []dto.LineItem{
				{ProductType: " Electronics ", Quantity: 1, Price: decimal.RequireFromString("50.00")},
			},
			want: 100,
		},
		{
			name:       "books multiplier adds half rate",
			totalPrice: "20.00",
			lineItems: []dto.LineItem{
				{ProductType: "books", Quantity: 2, Price: decimal.RequireFromString("10.00")},
			},
			want: 30, // 20 + floor(10*2*0.5)
		},
		{
			name:       "unknown category earns no bonus",
			totalPrice: "20.00",
			lineItems: []dto.LineItem{
				{ProductType: "furniture", Quantity: 1, Price: decimal.RequireFromString("20.00")},
			},
			want: 20,
		},
		{
			name:       "large order and category bonuses stack",
			totalPrice: "150.00",
			lineItems: []dto.LineItem{
				{ProductType: "clothing", Quantity: 3, Price: decimal.RequireFromString("50.00")},
			},
			want: 195, // 150 + 15 + floor(50*3*0.2)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &dto.OrderInfo{
				OrderID:    "450789469",
				TotalPrice: decimal.RequireFromString(tt.totalPrice),
				LineItems:  tt.lineItems,
			}
			got := calc.CalculateOrderPoints(order)
			assert.Equal(t, tt.want, got.Points)
			assert.NotEmpty(t, got.Reason)
			assert.GreaterOrEqual(t, got.Points, int64(0))
		})
	}
}

func TestCalculateOrderPoints_Deterministic(t *testing.T) {
	calc := newTestCalculator()
	order := &dto.OrderInfo{
		OrderID:    "450789469",
		TotalPrice: decimal.RequireFromString("150.00"),
		LineItems: []dto.LineItem{
			{ProductType: "electronics", Quantity: 2, Price: decimal.RequireFromString("60.00")},
		},
	}

	first := calc.CalculateOrderPoints(order)
	second := calc.CalculateOrderPoints(order)
	assert.Equal(t, first, second)
}

func TestCalculateOrderPoints_BelowThresholdReason(t *testing.T) {
	calc := newTestCalculator()
	got := calc.CalculateOrderPoints(&dto.OrderInfo{
		OrderID:    "1",
		TotalPrice: decimal.RequireFromString("0.50"),
	})
	assert.Zero(t, got.Points)
	assert.Contains(t, got.Reason, "below minimum threshold")
}

func TestCalculateRefundDeduction(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name           string
		refundAmount   string
		orderTotal     string
		originalPoints int64
		want           int64
		wantReason     string
	}{
		{
			name:           "full refund deducts everything",
			refundAmount:   "150.00",
			orderTotal:     "150.00",
			originalPoints: 165,
			want:           165,
			wantReason:     "full refund",
		},
		{
			name:           "half refund deducts floored half",
			refundAmount:   "75.00",
			orderTotal:     "150.00",
			originalPoints: 165,
			want:           82, // floor(165*0.5)
			wantReason:     "partial refund",
		},
		{
			name:           "over-refund clamps ratio to 1",
			refundAmount:   "200.00",
			orderTotal:     "150.00",
			originalPoints: 165,
			want:           165,
			wantReason:     "full refund",
		},
		{
			name:           "0.99 ratio reads as full refund but formula unchanged",
			refundAmount:   "99.00",
			orderTotal:     "100.00",
			originalPoints: 100,
			want:           99,
			wantReason:     "full refund",
		},
		{
			name:           "zero refund amount",
			refundAmount:   "0",
			orderTotal:     "150.00",
			originalPoints: 165,
			want:           0,
			wantReason:     "invalid amount",
		},
		{
			name:           "zero order total",
			refundAmount:   "150.00",
			orderTotal:     "0",
			originalPoints: 165,
			want:           0,
			wantReason:     "invalid amount",
		},
		{
			name:           "negative refund amount",
			refundAmount:   "-5.00",
			orderTotal:     "150.00",
			originalPoints: 165,
			want:           0,
			wantReason:     "invalid amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.CalculateRefundDeduction(
				decimal.RequireFromString(tt.refundAmount),
				decimal.RequireFromString(tt.orderTotal),
				tt.originalPoints,
			)
			assert.Equal(t, tt.want, got.Points)
			assert.Contains(t, got.Reason, tt.wantReason)
			assert.LessOrEqual(t, got.Points, tt.originalPoints)
		})
	}
}

func TestNewCalculator_DropsNonBonusMultipliers(t *testing.T) {
	cfg := config.PointsConfig{
		MinimumOrderAmount:  1,
		LargeOrderThreshold: 100,
		LargeOrderBonusRate: 0.1,
		CategoryMultipliers: map[string]float64{
			"Electronics": 2.0,
			"misc":        1.0, // no incremental bonus
			"junk":        0.5,
		},
	}
	calc := NewCalculator(cfg)

	order := &dto.OrderInfo{
		OrderID:    "1",
		TotalPrice: decimal.RequireFromString("10.00"),
		LineItems: []dto.LineItem{
			{ProductType: "misc", Quantity: 1, Price: decimal.RequireFromString("5.00")},
			{ProductType: "junk", Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
	}
	got := calc.CalculateOrderPoints(order)
	assert.Equal(t, int64(10), got.Points)
}
