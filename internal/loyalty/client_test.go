package loyalty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pointloop/pointloop/internal/config"
	ierr "github.com/pointloop/pointloop/internal/errors"
	"github.com/pointloop/pointloop/internal/logger"
)

type ClientTestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  Client
	lastReq struct {
		method string
		path   string
		apiKey string
		body   map[string]interface{}
	}
	respond func(w http.ResponseWriter)
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastReq.method = r.Method
		s.lastReq.path = r.URL.Path
		s.lastReq.apiKey = r.Header.Get("X-API-Key")
		s.lastReq.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&s.lastReq.body)
		}
		s.respond(w)
	}))

	cfg := config.GetDefaultConfig()
	cfg.Loyalty.BaseURL = s.server.URL
	cfg.Loyalty.APIKey = "test-api-key"
	cfg.Loyalty.RetryMax = 0
	s.client = NewClient(cfg, logger.GetLogger())
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) respondJSON(status int, body interface{}) {
	s.respond = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (s *ClientTestSuite) TestAwardPoints() {
	s.respondJSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"customer_id":    "2002",
		"points_awarded": 165,
		"new_balance":    265,
		"transaction_id": "txn_1",
	})

	resp, err := s.client.AwardPoints(context.Background(), &AwardPointsRequest{
		CustomerID:  "2002",
		Points:      165,
		Reason:      "order",
		ReferenceID: "1001",
	})

	s.Require().NoError(err)
	s.Equal(http.MethodPost, s.lastReq.method)
	s.Equal("/api/points/award", s.lastReq.path)
	s.Equal("test-api-key", s.lastReq.apiKey)
	s.EqualValues("earned", s.lastReq.body["transaction_type"])
	s.Equal(int64(165), resp.PointsAwarded)
	s.Equal(int64(265), resp.NewBalance)
	s.Equal("txn_1", resp.TransactionID)
}

func (s *ClientTestSuite) TestDeductPointsDefaultsTransactionType() {
	s.respondJSON(http.StatusOK, map[string]interface{}{
		"success":         true,
		"points_deducted": 82,
		"new_balance":     100,
	})

	_, err := s.client.DeductPoints(context.Background(), &DeductPointsRequest{
		CustomerID:  "2002",
		Points:      82,
		ReferenceID: "9001",
	})

	s.Require().NoError(err)
	s.Equal("/api/points/deduct", s.lastReq.path)
	s.EqualValues("deducted", s.lastReq.body["transaction_type"])
}

func (s *ClientTestSuite) TestGetOrderNotFound() {
	s.respondJSON(http.StatusNotFound, map[string]interface{}{"detail": "order not found"})

	_, err := s.client.GetOrder(context.Background(), "7777")

	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ClientTestSuite) TestBackendErrorDetailSurfaced() {
	s.respondJSON(http.StatusBadRequest, map[string]interface{}{"detail": "insufficient balance"})

	_, err := s.client.DeductPoints(context.Background(), &DeductPointsRequest{
		CustomerID: "2002",
		Points:     10,
	})

	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
	s.Contains(err.Error(), "insufficient balance")
}

func (s *ClientTestSuite) TestOpaqueErrorBody() {
	s.respond = func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}

	_, err := s.client.GetOrder(context.Background(), "1001")

	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
}

func (s *ClientTestSuite) TestComplianceDefaults() {
	s.respondJSON(http.StatusOK, map[string]interface{}{"success": true})

	_, err := s.client.RedactCustomer(context.Background(), &ComplianceRequest{CustomerID: "2002"})

	s.Require().NoError(err)
	s.Equal("/api/compliance/redact-customer", s.lastReq.path)
	s.EqualValues("full", s.lastReq.body["redaction_type"])
}

func (s *ClientTestSuite) TestUnreachableBackend() {
	s.server.Close()

	_, err := s.client.GetOrder(context.Background(), "1001")

	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
}
