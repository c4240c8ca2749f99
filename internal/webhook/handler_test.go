package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/types"
	"github.com/pointloop/pointloop/internal/webhook/verifier"
)

// stubProcessor returns a canned result and remembers the last event.
type stubProcessor struct {
	topic     types.WebhookTopic
	result    *ProcessingResult
	panicWith interface{}
	lastEvent *Event
}

func (p *stubProcessor) Topic() types.WebhookTopic { return p.topic }
func (p *stubProcessor) Description() string       { return "stub processor" }

func (p *stubProcessor) ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult {
	p.lastEvent = event
	if p.panicWith != nil {
		panic(p.panicWith)
	}
	return p.result
}

type HandlerTestSuite struct {
	suite.Suite
	cfg    *config.Configuration
	stub   *stubProcessor
	router *gin.Engine
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = config.GetDefaultConfig()
	s.stub = &stubProcessor{
		topic:  types.WebhookTopicOrdersPaid,
		result: SuccessResult("processed", map[string]interface{}{"points_awarded": 10}),
	}

	handler := NewHandler(s.cfg, NewRegistry(s.stub), logger.GetLogger())
	s.router = gin.New()
	handler.Register(s.router.Group("/webhooks"))
}

func (s *HandlerTestSuite) deliver(body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-paid", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(types.HeaderHmacSignature, signature)
	}
	req.Header.Set(types.HeaderShopDomain, "test-shop.myshopify.com")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestValidSignatureDispatchesToProcessor() {
	body := `{"id": 1001}`
	w := s.deliver(body, verifier.Sign([]byte(body), s.cfg.Shopify.WebhookSecret))

	s.Equal(http.StatusOK, w.Code)

	var result ProcessingResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.True(result.Success)
	s.Equal("processed", result.Message)

	s.Require().NotNil(s.stub.lastEvent)
	s.Equal(types.WebhookTopicOrdersPaid, s.stub.lastEvent.Topic)
	s.Equal("test-shop.myshopify.com", s.stub.lastEvent.ShopDomain)
	s.Equal(body, string(s.stub.lastEvent.RawBody))
}

func (s *HandlerTestSuite) TestInvalidSignatureRejectedWithoutProcessing() {
	w := s.deliver(`{"id": 1001}`, "bm90LWEtcmVhbC1zaWduYXR1cmU=")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Nil(s.stub.lastEvent)

	var result ProcessingResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.False(result.Success)
}

func (s *HandlerTestSuite) TestMissingSignatureRejected() {
	w := s.deliver(`{"id": 1001}`, "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Nil(s.stub.lastEvent)
}

func (s *HandlerTestSuite) TestProcessingFailureReturns500() {
	s.stub.result = FailureResult("backend unavailable")

	body := `{"id": 1001}`
	w := s.deliver(body, verifier.Sign([]byte(body), s.cfg.Shopify.WebhookSecret))

	s.Equal(http.StatusInternalServerError, w.Code)

	var result ProcessingResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.False(result.Success)
	s.Equal("backend unavailable", result.Error)
}

func (s *HandlerTestSuite) TestProcessorPanicRendersUniformFailure() {
	s.stub.panicWith = "boom"

	body := `{"id": 1001}`
	w := s.deliver(body, verifier.Sign([]byte(body), s.cfg.Shopify.WebhookSecret))

	s.Equal(http.StatusInternalServerError, w.Code)

	var result ProcessingResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.False(result.Success)
	s.Equal("internal error while processing webhook", result.Message)
}

func (s *HandlerTestSuite) TestHealthEndpointIdentifiesTopic() {
	req := httptest.NewRequest(http.MethodGet, "/webhooks/orders-paid", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var payload map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &payload))
	s.Equal("orders/paid", payload["webhook"])
	s.Equal("ready", payload["status"])
}
