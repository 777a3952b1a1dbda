// Package events fans product change notifications out to interested
// subscribers (the websocket feed and anything else wired in later).
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Type classifies an inventory event
type Type string

const (
	TypeCreated  Type = "product.created"
	TypeUpdated  Type = "product.updated"
	TypeDeleted  Type = "product.deleted"
	TypeLowStock Type = "product.low_stock"
)

// Event describes a single inventory change
type Event struct {
	Type      Type      `json:"type"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Category  string    `json:"category,omitempty"`
	Quantity  int       `json:"quantity"`
	At        time.Time `json:"at"`
}

// Broker delivers events to subscribers over buffered channels. Publish
// never blocks: a subscriber that falls behind loses events rather than
// stalling the mutation path.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
	logger *slog.Logger
}

// NewBroker creates a broker with the given per-subscriber buffer
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[int]chan Event),
		buffer: buffer,
		logger: logger,
	}
}

// Publish delivers the event to every current subscriber
func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				slog.Int("subscriber", id),
				slog.String("type", string(event.Type)),
			)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
