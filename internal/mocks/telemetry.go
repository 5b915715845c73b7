package mocks

import (
	"context"
	"sync"

	"friendship-service/internal/rabbitmq"
)

// Published is one message captured by RecordingPublisher.
type Published struct {
	RoutingKey string
	Event      any
}

// RecordingPublisher keeps every published message in memory.
type RecordingPublisher struct {
	mu   sync.Mutex
	msgs []Published
}

func (p *RecordingPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, Published{RoutingKey: routingKey, Event: event})
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// RoutingKeys returns the routing keys seen so far, in publish order.
func (p *RecordingPublisher) RoutingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		keys[i] = m.RoutingKey
	}
	return keys
}

func (p *RecordingPublisher) Messages() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.msgs...)
}

var _ rabbitmq.Publisher = (*RecordingPublisher)(nil)
