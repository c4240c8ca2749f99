package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/pointloop/pointloop/internal/errors"
)

func TestParseRefundInfoSumsTransactions(t *testing.T) {
	body := []byte(`{
		"id": 9001,
		"order_id": 1001,
		"transactions": [
			{"amount": "50.00", "kind": "refund"},
			{"amount": "25.00", "kind": "refund"}
		]
	}`)

	info, err := ParseRefundInfo(body)
	require.NoError(t, err)

	assert.Equal(t, "9001", info.RefundID)
	assert.Equal(t, "1001", info.OrderID)
	assert.Equal(t, "75", info.TotalRefundAmount.String())
}

func TestParseRefundInfoLineItemFallback(t *testing.T) {
	body := []byte(`{
		"id": 9001,
		"order_id": 1001,
		"refund_line_items": [
			{"quantity": 1, "subtotal": "30.00"},
			{"quantity": 2, "subtotal": "20.00"}
		]
	}`)

	info, err := ParseRefundInfo(body)
	require.NoError(t, err)

	assert.Equal(t, "50", info.TotalRefundAmount.String())
	require.Len(t, info.RefundLineItems, 2)
	assert.Equal(t, int64(2), info.RefundLineItems[1].Quantity)
}

func TestParseRefundInfoTransactionsWinOverLineItems(t *testing.T) {
	body := []byte(`{
		"id": 9001,
		"order_id": 1001,
		"transactions": [{"amount": "60.00"}],
		"refund_line_items": [{"subtotal": "30.00"}]
	}`)

	info, err := ParseRefundInfo(body)
	require.NoError(t, err)
	assert.Equal(t, "60", info.TotalRefundAmount.String())
}

func TestParseRefundInfoMissingIdentifiers(t *testing.T) {
	_, err := ParseRefundInfo([]byte(`{"transactions": [{"amount": "10.00"}]}`))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
