package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/testutil"
	"github.com/pointloop/pointloop/internal/types"
)

type ComplianceTestSuite struct {
	suite.Suite
	backend   *testutil.InMemoryLoyaltyBackend
	publisher *testutil.RecordingPublisher
}

func TestCompliance(t *testing.T) {
	suite.Run(t, new(ComplianceTestSuite))
}

func (s *ComplianceTestSuite) SetupTest() {
	s.backend = testutil.NewInMemoryLoyaltyBackend()
	s.publisher = testutil.NewRecordingPublisher()
}

func (s *ComplianceTestSuite) event(topic types.WebhookTopic, body string) *Event {
	return &Event{
		Topic:      topic,
		ShopDomain: "test-shop.myshopify.com",
		RawBody:    []byte(body),
	}
}

func (s *ComplianceTestSuite) TestCustomersRedact() {
	proc := NewCustomersRedactProcessor(s.backend, s.publisher, logger.GetLogger())

	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicCustomersRedact, `{
		"shop_id": 55,
		"shop_domain": "test-shop.myshopify.com",
		"customer": {"id": 2002, "email": "a@b.c"},
		"orders_to_redact": [1001, 1002]
	}`))

	s.True(result.Success)
	s.Require().Len(s.backend.Redactions, 1)
	s.Equal("2002", s.backend.Redactions[0].CustomerID)
	s.Equal("customers/redact", s.backend.Redactions[0].WebhookSource)
	s.Require().Len(s.publisher.Events, 1)
	s.Equal(types.LoyaltyEventCustomerRedacted, s.publisher.Events[0].Type)
}

func (s *ComplianceTestSuite) TestCustomersRedactMissingIDFails() {
	proc := NewCustomersRedactProcessor(s.backend, s.publisher, logger.GetLogger())

	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicCustomersRedact, `{"shop_id": 55}`))

	s.False(result.Success)
	s.Empty(s.backend.Redactions)
}

func (s *ComplianceTestSuite) TestCustomersDataRequest() {
	proc := NewCustomersDataRequestProcessor(s.backend, s.publisher, logger.GetLogger())

	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicCustomersDataRequest, `{
		"shop_domain": "test-shop.myshopify.com",
		"customer": {"id": 2002},
		"orders_requested": [1001]
	}`))

	s.True(result.Success)
	s.Require().Len(s.backend.Exports, 1)
	s.Equal("2002", s.backend.Exports[0].CustomerID)
	s.Require().Len(s.publisher.Events, 1)
	s.Equal(types.LoyaltyEventDataExported, s.publisher.Events[0].Type)
}

func (s *ComplianceTestSuite) TestShopRedact() {
	proc := NewShopRedactProcessor(s.backend, s.publisher, logger.GetLogger())

	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicShopRedact, `{
		"shop_id": 55,
		"shop_domain": "closing-shop.myshopify.com"
	}`))

	s.True(result.Success)
	s.Require().Len(s.backend.ShopRedactions, 1)
	s.Equal("closing-shop.myshopify.com", s.backend.ShopRedactions[0].ShopDomain)
	s.Require().Len(s.publisher.Events, 1)
	s.Equal(types.LoyaltyEventShopRedacted, s.publisher.Events[0].Type)
}

func (s *ComplianceTestSuite) TestAppUninstalledFallsBackToHeaderDomain() {
	proc := NewAppUninstalledProcessor(s.backend, s.publisher, logger.GetLogger())

	// app/uninstalled delivers the shop resource without shop_domain; the
	// delivery header is the fallback.
	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicAppUninstalled, `{"id": 55}`))

	s.True(result.Success)
	s.Require().Len(s.backend.Uninstalls, 1)
	s.Equal("test-shop.myshopify.com", s.backend.Uninstalls[0].ShopDomain)
	s.Equal("55", s.backend.Uninstalls[0].ShopID)
	s.Require().Len(s.publisher.Events, 1)
	s.Equal(types.LoyaltyEventAppUninstalled, s.publisher.Events[0].Type)
}

func (s *ComplianceTestSuite) TestCustomersCreate() {
	proc := NewCustomersCreateProcessor(s.backend, s.publisher, logger.GetLogger())

	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicCustomersCreate, `{
		"id": 2002,
		"email": "a@b.c",
		"first_name": "Ada",
		"last_name": "Lovelace"
	}`))

	s.True(result.Success)
	s.Require().Len(s.backend.Profiles, 1)
	s.Equal("2002", s.backend.Profiles[0].CustomerID)
	s.Equal("test-shop.myshopify.com", s.backend.Profiles[0].Shop)
	s.Equal(int64(0), s.backend.Balance("2002"))
	s.Require().Len(s.publisher.Events, 1)
	s.Equal(types.LoyaltyEventCustomerCreated, s.publisher.Events[0].Type)
}

func (s *ComplianceTestSuite) TestCustomersCreateMissingIDFails() {
	proc := NewCustomersCreateProcessor(s.backend, s.publisher, logger.GetLogger())

	result := proc.ProcessWebhook(context.Background(), s.event(types.WebhookTopicCustomersCreate, `{"email": "a@b.c"}`))

	s.False(result.Success)
	s.Empty(s.backend.Profiles)
}
