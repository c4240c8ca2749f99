package webhook

import (
	"context"
	"strings"
	"time"

	"github.com/pointloop/pointloop/internal/events"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/loyalty"
	"github.com/pointloop/pointloop/internal/types"
	"github.com/pointloop/pointloop/internal/webhook/dto"
)

// CustomersRedactProcessor forwards a GDPR customer redaction request.
type CustomersRedactProcessor struct {
	client    loyalty.Client
	publisher events.Publisher
	logger    *logger.Logger
}

func NewCustomersRedactProcessor(client loyalty.Client, publisher events.Publisher, log *logger.Logger) *CustomersRedactProcessor {
	return &CustomersRedactProcessor{client: client, publisher: publisher, logger: log}
}

func (p *CustomersRedactProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicCustomersRedact
}

func (p *CustomersRedactProcessor) Description() string {
	return "redacts a customer's loyalty data for GDPR compliance"
}

func (p *CustomersRedactProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	info, err := dto.ParseCustomerComplianceInfo(event.RawBody)
	if err != nil {
		return FailureFromError(err)
	}

	result, err := p.client.RedactCustomer(ctx, &loyalty.ComplianceRequest{
		CustomerID:    info.CustomerID,
		ShopDomain:    shopDomainOf(info.ShopDomain, event),
		ShopID:        info.ShopID,
		RequestedAt:   time.Now().UTC(),
		WebhookSource: p.Topic().String(),
	})
	if err != nil {
		p.logger.Errorw("failed to redact customer data",
			"customer_id", info.CustomerID,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventCustomerRedacted, shopDomainOf(info.ShopDomain, event))
	evt.CustomerID = info.CustomerID
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "customer_id", info.CustomerID, "error", pubErr)
	}

	return SuccessResult("customer data redacted", map[string]interface{}{
		"customer_id": info.CustomerID,
		"backend":     result,
	})
}

// CustomersDataRequestProcessor forwards a GDPR data export request.
type CustomersDataRequestProcessor struct {
	client    loyalty.Client
	publisher events.Publisher
	logger    *logger.Logger
}

func NewCustomersDataRequestProcessor(client loyalty.Client, publisher events.Publisher, log *logger.Logger) *CustomersDataRequestProcessor {
	return &CustomersDataRequestProcessor{client: client, publisher: publisher, logger: log}
}

func (p *CustomersDataRequestProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicCustomersDataRequest
}

func (p *CustomersDataRequestProcessor) Description() string {
	return "exports a customer's loyalty data for GDPR compliance"
}

func (p *CustomersDataRequestProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	info, err := dto.ParseCustomerComplianceInfo(event.RawBody)
	if err != nil {
		return FailureFromError(err)
	}

	result, err := p.client.ExportCustomerData(ctx, &loyalty.ComplianceRequest{
		CustomerID:    info.CustomerID,
		ShopDomain:    shopDomainOf(info.ShopDomain, event),
		ShopID:        info.ShopID,
		RequestedAt:   time.Now().UTC(),
		WebhookSource: p.Topic().String(),
	})
	if err != nil {
		p.logger.Errorw("failed to export customer data",
			"customer_id", info.CustomerID,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventDataExported, shopDomainOf(info.ShopDomain, event))
	evt.CustomerID = info.CustomerID
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "customer_id", info.CustomerID, "error", pubErr)
	}

	return SuccessResult("customer data export generated", map[string]interface{}{
		"customer_id": info.CustomerID,
		"backend":     result,
	})
}

// ShopRedactProcessor forwards a GDPR shop redaction request.
type ShopRedactProcessor struct {
	client    loyalty.Client
	publisher events.Publisher
	logger    *logger.Logger
}

func NewShopRedactProcessor(client loyalty.Client, publisher events.Publisher, log *logger.Logger) *ShopRedactProcessor {
	return &ShopRedactProcessor{client: client, publisher: publisher, logger: log}
}

func (p *ShopRedactProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicShopRedact
}

func (p *ShopRedactProcessor) Description() string {
	return "redacts all loyalty data for a shop for GDPR compliance"
}

func (p *ShopRedactProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	info, err := dto.ParseShopComplianceInfo(event.RawBody, event.ShopDomain)
	if err != nil {
		return FailureFromError(err)
	}

	result, err := p.client.RedactShop(ctx, &loyalty.ComplianceRequest{
		ShopDomain:    info.ShopDomain,
		ShopID:        info.ShopID,
		RequestedAt:   time.Now().UTC(),
		WebhookSource: p.Topic().String(),
	})
	if err != nil {
		p.logger.Errorw("failed to redact shop data",
			"shop_domain", info.ShopDomain,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventShopRedacted, info.ShopDomain)
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "shop_domain", info.ShopDomain, "error", pubErr)
	}

	return SuccessResult("shop data redacted", map[string]interface{}{
		"shop_domain": info.ShopDomain,
		"backend":     result,
	})
}

// AppUninstalledProcessor runs soft-delete cleanup when the app is removed
// from a shop, preserving data for a possible reinstall.
type AppUninstalledProcessor struct {
	client    loyalty.Client
	publisher events.Publisher
	logger    *logger.Logger
}

func NewAppUninstalledProcessor(client loyalty.Client, publisher events.Publisher, log *logger.Logger) *AppUninstalledProcessor {
	return &AppUninstalledProcessor{client: client, publisher: publisher, logger: log}
}

func (p *AppUninstalledProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicAppUninstalled
}

func (p *AppUninstalledProcessor) Description() string {
	return "soft-deletes shop data when the app is uninstalled"
}

func (p *AppUninstalledProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	info, err := dto.ParseShopComplianceInfo(event.RawBody, event.ShopDomain)
	if err != nil {
		return FailureFromError(err)
	}

	result, err := p.client.HandleAppUninstall(ctx, &loyalty.AppUninstallRequest{
		ShopDomain:    info.ShopDomain,
		ShopID:        info.ShopID,
		UninstalledAt: time.Now().UTC(),
		WebhookSource: p.Topic().String(),
	})
	if err != nil {
		p.logger.Errorw("failed to process app uninstall",
			"shop_domain", info.ShopDomain,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventAppUninstalled, info.ShopDomain)
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "shop_domain", info.ShopDomain, "error", pubErr)
	}

	return SuccessResult("app uninstall cleanup completed", map[string]interface{}{
		"shop_domain": info.ShopDomain,
		"backend":     result,
	})
}

// CustomersCreateProcessor creates a zero-balance loyalty profile for a new
// customer.
type CustomersCreateProcessor struct {
	client    loyalty.Client
	publisher events.Publisher
	logger    *logger.Logger
}

func NewCustomersCreateProcessor(client loyalty.Client, publisher events.Publisher, log *logger.Logger) *CustomersCreateProcessor {
	return &CustomersCreateProcessor{client: client, publisher: publisher, logger: log}
}

func (p *CustomersCreateProcessor) Topic() types.WebhookTopic {
	return types.WebhookTopicCustomersCreate
}

func (p *CustomersCreateProcessor) Description() string {
	return "creates a zero-balance loyalty profile for a new customer"
}

func (p *CustomersCreateProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	info, err := dto.ParseCustomerCreateInfo(event.RawBody)
	if err != nil {
		return FailureFromError(err)
	}

	result, err := p.client.CreateCustomerProfile(ctx, &loyalty.CustomerProfileRequest{
		CustomerID:    info.CustomerID,
		Email:         info.Email,
		FirstName:     info.FirstName,
		LastName:      info.LastName,
		Shop:          event.ShopDomain,
		InitialPoints: 0,
		WebhookSource: p.Topic().String(),
	})
	if err != nil {
		p.logger.Errorw("failed to create customer profile",
			"customer_id", info.CustomerID,
			"error", err)
		return FailureFromError(err)
	}

	evt := events.NewLoyaltyEvent(types.LoyaltyEventCustomerCreated, event.ShopDomain)
	evt.CustomerID = info.CustomerID
	if pubErr := p.publisher.Publish(ctx, evt); pubErr != nil {
		p.logger.Warnw("loyalty event publish failed", "customer_id", info.CustomerID, "error", pubErr)
	}

	return SuccessResult("customer loyalty profile created", map[string]interface{}{
		"customer_id": info.CustomerID,
		"backend":     result,
	})
}

// shopDomainOf prefers the payload's shop domain over the delivery header.
func shopDomainOf(payloadDomain string, event *Event) string {
	if strings.TrimSpace(payloadDomain) != "" {
		return payloadDomain
	}
	return event.ShopDomain
}
