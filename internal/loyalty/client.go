package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/pointloop/pointloop/internal/config"
	ierr "github.com/pointloop/pointloop/internal/errors"
	"github.com/pointloop/pointloop/internal/logger"
)

// Client defines the outbound interface to the loyalty backend. All
// mutating calls are idempotent on the backend side via reference_id, so a
// redelivered webhook never double-credits or double-debits.
type Client interface {
	AwardPoints(ctx context.Context, req *AwardPointsRequest) (*PointsTransactionResponse, error)
	DeductPoints(ctx context.Context, req *DeductPointsRequest) (*PointsTransactionResponse, error)
	EvaluateTier(ctx context.Context, req *TierEvaluationRequest) (*TierEvaluationResponse, error)
	GetOrder(ctx context.Context, orderID string) (*OrderRecord, error)
	CreateCustomerProfile(ctx context.Context, req *CustomerProfileRequest) (map[string]interface{}, error)
	RedactCustomer(ctx context.Context, req *ComplianceRequest) (map[string]interface{}, error)
	ExportCustomerData(ctx context.Context, req *ComplianceRequest) (map[string]interface{}, error)
	RedactShop(ctx context.Context, req *ComplianceRequest) (map[string]interface{}, error)
	HandleAppUninstall(ctx context.Context, req *AppUninstallRequest) (map[string]interface{}, error)
}

// httpClient is the HTTP implementation of Client.
type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
	logger     *logger.Logger
}

// NewClient creates a loyalty backend client. Requests are bounded by the
// configured timeout so the webhook handler always completes inside the
// delivering platform's retry window.
func NewClient(cfg *config.Configuration, log *logger.Logger) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Loyalty.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 1 * time.Second
	rc.Logger = log.GetRetryableHTTPLogger()
	rc.HTTPClient.Timeout = cfg.Loyalty.Timeout

	return &httpClient{
		baseURL:    cfg.Loyalty.BaseURL,
		apiKey:     cfg.Loyalty.APIKey,
		httpClient: rc,
		logger:     log,
	}
}

// AwardPoints credits points for a paid order.
func (c *httpClient) AwardPoints(ctx context.Context, req *AwardPointsRequest) (*PointsTransactionResponse, error) {
	if req.TransactionType == "" {
		req.TransactionType = TransactionTypeEarned
	}

	var resp PointsTransactionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/points/award", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Infow("awarded points in loyalty backend",
		"customer_id", req.CustomerID,
		"points", req.Points,
		"reference_id", req.ReferenceID,
		"transaction_id", resp.TransactionID,
		"new_balance", resp.NewBalance)

	return &resp, nil
}

// DeductPoints debits points for a refund.
func (c *httpClient) DeductPoints(ctx context.Context, req *DeductPointsRequest) (*PointsTransactionResponse, error) {
	if req.TransactionType == "" {
		req.TransactionType = TransactionTypeDeducted
	}

	var resp PointsTransactionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/points/deduct", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Infow("deducted points in loyalty backend",
		"customer_id", req.CustomerID,
		"points", req.Points,
		"reference_id", req.ReferenceID,
		"transaction_id", resp.TransactionID,
		"new_balance", resp.NewBalance)

	return &resp, nil
}

// EvaluateTier triggers an asynchronous tier re-evaluation.
func (c *httpClient) EvaluateTier(ctx context.Context, req *TierEvaluationRequest) (*TierEvaluationResponse, error) {
	var resp TierEvaluationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/tiers/evaluate", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Infow("evaluated tier in loyalty backend",
		"customer_id", req.CustomerID,
		"trigger", req.Trigger,
		"current_tier", resp.CurrentTier,
		"tier_changed", resp.TierChanged)

	return &resp, nil
}

// GetOrder fetches the backend's record of a processed order.
func (c *httpClient) GetOrder(ctx context.Context, orderID string) (*OrderRecord, error) {
	var resp OrderRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCustomerProfile creates a zero-balance loyalty profile.
func (c *httpClient) CreateCustomerProfile(ctx context.Context, req *CustomerProfileRequest) (map[string]interface{}, error) {
	if req.CreatedVia == "" {
		req.CreatedVia = "webhook"
	}
	return c.doJSONGeneric(ctx, http.MethodPost, "/api/customers/create-profile", req)
}

// RedactCustomer fully redacts a customer's loyalty data.
func (c *httpClient) RedactCustomer(ctx context.Context, req *ComplianceRequest) (map[string]interface{}, error) {
	if req.RedactionType == "" {
		req.RedactionType = "full"
	}
	return c.doJSONGeneric(ctx, http.MethodPost, "/api/compliance/redact-customer", req)
}

// ExportCustomerData generates a JSON export of a customer's loyalty data.
func (c *httpClient) ExportCustomerData(ctx context.Context, req *ComplianceRequest) (map[string]interface{}, error) {
	if req.ExportFormat == "" {
		req.ExportFormat = "json"
	}
	return c.doJSONGeneric(ctx, http.MethodPost, "/api/compliance/export-customer-data", req)
}

// RedactShop fully redacts all data for a shop.
func (c *httpClient) RedactShop(ctx context.Context, req *ComplianceRequest) (map[string]interface{}, error) {
	if req.RedactionType == "" {
		req.RedactionType = "full"
	}
	return c.doJSONGeneric(ctx, http.MethodPost, "/api/compliance/redact-shop", req)
}

// HandleAppUninstall runs soft-delete cleanup for an uninstalled shop.
func (c *httpClient) HandleAppUninstall(ctx context.Context, req *AppUninstallRequest) (map[string]interface{}, error) {
	if req.CleanupType == "" {
		req.CleanupType = "soft_delete"
	}
	return c.doJSONGeneric(ctx, http.MethodPost, "/api/app/uninstall", req)
}

func (c *httpClient) doJSONGeneric(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	var resp map[string]interface{}
	if err := c.doJSON(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// doJSON issues a JSON request against the backend and normalizes every
// failure mode into a marked error.
func (c *httpClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Invalid loyalty backend request data").
				Mark(ierr.ErrInternal)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create loyalty backend request").
			Mark(ierr.ErrInternal)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorw("loyalty backend request failed",
			"error", err,
			"method", method,
			"path", path)
		return ierr.WithError(err).
			WithHint("Unable to connect to loyalty backend").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read loyalty backend response").
			Mark(ierr.ErrHTTPClient)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return ierr.NewErrorf("loyalty backend resource not found: %s", path).
				WithHint("Resource not found in loyalty backend").
				Mark(ierr.ErrNotFound)
		}
		var errResp errorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && (errResp.Detail != "" || errResp.Message != "") {
			msg := errResp.Detail
			if msg == "" {
				msg = errResp.Message
			}
			c.logger.Errorw("loyalty backend API error",
				"status", resp.StatusCode,
				"message", msg,
				"path", path)
			return ierr.NewError(msg).
				WithHint("Loyalty backend rejected the request").
				WithReportableDetails(map[string]interface{}{
					"status": resp.StatusCode,
				}).
				Mark(ierr.ErrHTTPClient)
		}
		return ierr.NewError("loyalty backend API error").
			WithHint(fmt.Sprintf("HTTP status %d", resp.StatusCode)).
			Mark(ierr.ErrHTTPClient)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to parse loyalty backend response").
				Mark(ierr.ErrHTTPClient)
		}
	}
	return nil
}
