package realtimesvc

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// InMemBroker is a process-local Broker for tests and single-node dev runs.
type InMemBroker struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

var _ Broker = (*InMemBroker)(nil)

func NewInMemBroker() *InMemBroker {
	return &InMemBroker{subs: make(map[string][]chan Event)}
}

func (b *InMemBroker) Publish(_ context.Context, channel string, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[channel] {
		select {
		case sub <- ev:
		default: // slow subscriber; drop
		}
	}
	return nil
}

func (b *InMemBroker) Subscribe(_ context.Context, channel string) (<-chan Event, func(), error) {
	sub := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[channel]
		for i, s := range subs {
			if s == sub {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				close(sub)
				break
			}
		}
	}
	return sub, cancel, nil
}
