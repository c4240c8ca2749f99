package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/pointloop/pointloop/internal/errors"
)

func TestParseCustomerComplianceInfo(t *testing.T) {
	body := []byte(`{
		"shop_id": 55,
		"shop_domain": "test-shop.myshopify.com",
		"customer": {"id": 2002, "email": "a@b.c"},
		"orders_to_redact": [1001, 1002]
	}`)

	info, err := ParseCustomerComplianceInfo(body)
	require.NoError(t, err)

	assert.Equal(t, "2002", info.CustomerID)
	assert.Equal(t, "55", info.ShopID)
	assert.Equal(t, []string{"1001", "1002"}, info.OrdersToRedact)
}

func TestParseCustomerComplianceInfoMissingCustomer(t *testing.T) {
	_, err := ParseCustomerComplianceInfo([]byte(`{"shop_id": 55}`))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestParseShopComplianceInfoFallsBackToHeader(t *testing.T) {
	info, err := ParseShopComplianceInfo([]byte(`{"id": 55}`), "header-shop.myshopify.com")
	require.NoError(t, err)

	assert.Equal(t, "55", info.ShopID)
	assert.Equal(t, "header-shop.myshopify.com", info.ShopDomain)
}

func TestParseShopComplianceInfoNoDomainAnywhere(t *testing.T) {
	_, err := ParseShopComplianceInfo([]byte(`{}`), "")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestParseCustomerCreateInfo(t *testing.T) {
	info, err := ParseCustomerCreateInfo([]byte(`{"id": 2002, "email": "a@b.c", "first_name": "Ada"}`))
	require.NoError(t, err)

	assert.Equal(t, "2002", info.CustomerID)
	assert.Equal(t, "Ada", info.FirstName)
}
