package events

import (
	"sync"
	"time"
)

// Lifecycle event types broadcast to subscribers.
const (
	FighterRegistered = "agent:registered"
	BattleCreated     = "battle:created"
	BattleStarted     = "battle:started"
	BattleRound       = "battle:round"
	BattleArgument    = "battle:argument"
	BattleBet         = "battle:bet"
	BattleVote        = "battle:vote"
	BattleSettled     = "battle:settled"
	BattleCancelled   = "battle:cancelled"
)

// Event is one lifecycle notification as delivered on the wire.
type Event struct {
	Type      string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher is the narrow seam the services emit through.
type Publisher interface {
	Publish(eventType string, data interface{})
}

// NopPublisher discards every event. Used by tests and the migrate command.
type NopPublisher struct{}

func (NopPublisher) Publish(string, interface{}) {}

// Hub fans events out to all current subscribers. Delivery is at-most-once:
// a subscriber that cannot keep up has the event dropped rather than
// blocking the publishing battle.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Publish delivers an event to every current subscriber without blocking.
func (h *Hub) Publish(eventType string, data interface{}) {
	event := Event{Type: eventType, Data: data, Timestamp: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			// Slow subscriber; no replay guarantee.
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports how many subscribers are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
