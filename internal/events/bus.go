// Package events carries pipeline progress notifications from the
// orchestrator to in-process consumers such as the websocket endpoint.
package events

import (
	"sync"
	"time"
)

// Event types published over the bus.
const (
	TypeRunStarted     = "run_started"
	TypeActaFetched    = "acta_fetched"
	TypeMatchEnriched  = "match_enriched"
	TypeGroupCompleted = "group_completed"
	TypeRunCompleted   = "run_completed"
)

// Event is one pipeline progress notification.
type Event struct {
	RunID   string    `json:"run_id"`
	Type    string    `json:"type"`
	Group   string    `json:"group,omitempty"`
	MatchID string    `json:"match_id,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

const subscriberBuffer = 64

// Bus is a small fan-out pub/sub. Slow subscribers drop events rather than
// blocking the pipeline.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a consumer. The returned cancel func must be called to
// release the subscription.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish stamps and fans out the event without blocking.
func (b *Bus) Publish(ev Event) {
	ev.Time = time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default: // drop for slow consumers
		}
	}
}
