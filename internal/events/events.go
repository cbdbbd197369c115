// Package events is an in-process pub/sub for booking lifecycle events.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Event types published by the booking flow.
const (
	TypeCartItemAdded     = "cart.item_added"
	TypeCartItemRemoved   = "cart.item_removed"
	TypeCartCleared       = "cart.cleared"
	TypeBookingConfirmed  = "booking.confirmed"
	TypeBookingSubmitted  = "booking.submitted"
	TypeBookingSubmitFail = "booking.submit_failed"
)

// Wildcard subscribers receive every event.
const Wildcard = "*"

// Event is a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	SessionID string
	Payload   []byte
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus delivers events to subscribers synchronously.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	nextID      atomic.Int64
	logger      zerolog.Logger
}

// NewBus constructs an empty bus.
func NewBus(logger *zerolog.Logger) *Bus {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "events").Logger()
	}
	return &Bus{subscribers: make(map[string][]Handler), logger: l}
}

// Subscribe registers a handler for an event type or Wildcard.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handler errors are logged.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers[Wildcard]...)
	b.mu.RUnlock()

	if event.ID == 0 {
		event.ID = b.nextID.Add(1)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("type", event.Type).Int64("event_id", event.ID).Msg("event handler failed")
		}
	}
}

// PublishJSON marshals payload and publishes it.
func (b *Bus) PublishJSON(eventType, sessionID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.Publish(Event{Type: eventType, SessionID: sessionID, Payload: data})
	return nil
}
