package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pointloop/pointloop/internal/config"
	ierr "github.com/pointloop/pointloop/internal/errors"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/redis"
	"github.com/pointloop/pointloop/internal/types"
)

// LoyaltyEvent is an entry on the loyalty activity stream, emitted after a
// points-affecting webhook has been processed. Downstream consumers read it
// for analytics and notifications; it is never an input to point math.
type LoyaltyEvent struct {
	ID          string                 `json:"id"`
	Type        types.LoyaltyEventType `json:"type"`
	ShopDomain  string                 `json:"shop_domain"`
	CustomerID  string                 `json:"customer_id,omitempty"`
	Points      int64                  `json:"points,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
	ReferenceID string                 `json:"reference_id,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NewLoyaltyEvent builds an event with a fresh id and timestamp.
func NewLoyaltyEvent(eventType types.LoyaltyEventType, shopDomain string) *LoyaltyEvent {
	return &LoyaltyEvent{
		ID:         types.GenerateEventID(),
		Type:       eventType,
		ShopDomain: shopDomain,
		Timestamp:  time.Now().UTC(),
	}
}

// Publisher emits loyalty activity events. Publishing is best-effort:
// callers ignore failures so the webhook response never depends on the
// stream being available.
type Publisher interface {
	Publish(ctx context.Context, event *LoyaltyEvent) error
	Close() error
}

// redisPublisher writes events to a capped Redis stream and ensures the
// consumer group exists so processors can attach at any time.
type redisPublisher struct {
	client        *redis.Client
	stream        string
	consumerGroup string
	maxLen        int64
	logger        *logger.Logger
}

// NewRedisPublisher creates the stream publisher and registers the
// consumer group on the stream, creating the stream if needed.
func NewRedisPublisher(client *redis.Client, cfg config.EventsConfig, log *logger.Logger) (Publisher, error) {
	p := &redisPublisher{
		client:        client,
		stream:        cfg.Stream,
		consumerGroup: cfg.ConsumerGroup,
		maxLen:        cfg.MaxLen,
		logger:        log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.GetClient().XGroupCreateMkStream(ctx, p.stream, p.consumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, ierr.WithError(err).
			WithHint("Failed to create loyalty event consumer group").
			Mark(ierr.ErrSystem)
	}

	log.Infow("loyalty event stream ready",
		"stream", p.stream,
		"consumer_group", p.consumerGroup)

	return p, nil
}

// Publish appends the event to the stream, trimming it to roughly maxLen.
func (p *redisPublisher) Publish(ctx context.Context, event *LoyaltyEvent) error {
	values := map[string]interface{}{
		"id":          event.ID,
		"type":        string(event.Type),
		"shop_domain": event.ShopDomain,
		"timestamp":   event.Timestamp.Format(time.RFC3339Nano),
	}
	if event.CustomerID != "" {
		values["customer_id"] = event.CustomerID
	}
	if event.Points != 0 {
		values["points"] = event.Points
	}
	if event.Reason != "" {
		values["reason"] = event.Reason
	}
	if event.ReferenceID != "" {
		values["reference_id"] = event.ReferenceID
	}
	if len(event.Metadata) > 0 {
		metaBytes, err := json.Marshal(event.Metadata)
		if err == nil {
			values["metadata"] = string(metaBytes)
		}
	}

	streamID, err := p.client.GetClient().XAdd(ctx, &goredis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		p.logger.Warnw("failed to publish loyalty event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return ierr.WithError(err).
			WithHint("Failed to publish loyalty event").
			Mark(ierr.ErrSystem)
	}

	p.logger.Debugw("published loyalty event",
		"event_id", event.ID,
		"event_type", event.Type,
		"stream_id", streamID)
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

// noopPublisher is used when Redis is not configured.
type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event *LoyaltyEvent) error { return nil }
func (noopPublisher) Close() error                                           { return nil }

// NewPublisher wires the configured publisher: the Redis stream when events
// are enabled and Redis is reachable, otherwise a no-op.
func NewPublisher(cfg *config.Configuration, log *logger.Logger) Publisher {
	if !cfg.Events.Enabled || cfg.Redis.Host == "" {
		log.Infow("loyalty event stream disabled")
		return NewNoopPublisher()
	}

	client, err := redis.NewClient(cfg.Redis, log)
	if err != nil {
		log.Warnw("redis unavailable, loyalty event stream disabled", "error", err)
		return NewNoopPublisher()
	}

	pub, err := NewRedisPublisher(client, cfg.Events, log)
	if err != nil {
		log.Warnw("failed to initialize loyalty event stream, disabled", "error", err)
		return NewNoopPublisher()
	}
	return pub
}
