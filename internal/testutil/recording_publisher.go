package testutil

import (
	"context"
	"sync"

	"github.com/pointloop/pointloop/internal/events"
)

// RecordingPublisher implements events.Publisher, capturing published events
// for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []*events.LoyaltyEvent
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(ctx context.Context, event *events.LoyaltyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}
