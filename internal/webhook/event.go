package webhook

import (
	"context"

	"github.com/pointloop/pointloop/internal/errors"
	"github.com/pointloop/pointloop/internal/types"
)

// Event is the verified inbound webhook delivery handed to a processor.
// It is constructed once per request and never outlives the handler.
type Event struct {
	Topic           types.WebhookTopic
	ShopDomain      string
	RawBody         []byte
	SignatureHeader string
}

// ProcessingResult is the uniform output of every topic processor. The
// gateway maps Success to the HTTP status and serializes the rest as the
// response body.
type ProcessingResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// SuccessResult builds a successful result.
func SuccessResult(message string, data map[string]interface{}) *ProcessingResult {
	return &ProcessingResult{Success: true, Message: message, Data: data}
}

// FailureResult builds a failed result with a caller-facing message.
func FailureResult(message string) *ProcessingResult {
	return &ProcessingResult{Success: false, Message: message, Error: message}
}

// FailureFromError converts an error into a failed result, exposing only
// the externally safe message and reportable details.
func FailureFromError(err error) *ProcessingResult {
	resp := errors.NewErrorResponse(err)
	result := &ProcessingResult{
		Success: false,
		Message: resp.Error.Message,
		Error:   resp.Error.Message,
	}
	if len(resp.Error.Details) > 0 {
		result.Data = resp.Error.Details
	}
	return result
}

// Processor is the contract every topic handler conforms to. Processors
// parse, validate and act on a verified event; they report failures through
// the result, not by panicking.
type Processor interface {
	Topic() types.WebhookTopic
	Description() string
	ProcessWebhook(ctx context.Context, event *Event) *ProcessingResult
}

// Registry is the closed set of topic processors the gateway dispatches to.
type Registry struct {
	processors map[types.WebhookTopic]Processor
	order      []types.WebhookTopic
}

// NewRegistry binds processors by topic. Registering the same topic twice
// keeps the last registration.
func NewRegistry(processors ...Processor) *Registry {
	r := &Registry{processors: make(map[types.WebhookTopic]Processor, len(processors))}
	for _, p := range processors {
		if _, exists := r.processors[p.Topic()]; !exists {
			r.order = append(r.order, p.Topic())
		}
		r.processors[p.Topic()] = p
	}
	return r
}

// Get returns the processor bound to a topic.
func (r *Registry) Get(topic types.WebhookTopic) (Processor, bool) {
	p, ok := r.processors[topic]
	return p, ok
}

// Topics lists the registered topics in registration order.
func (r *Registry) Topics() []types.WebhookTopic {
	return r.order
}
