// Package eventbus provides the synchronous implementation of ports.EventBus.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// SyncEventBus delivers events to handlers on the publishing goroutine, in
// subscription order, type-specific handlers first and wildcard handlers last.
//
// Thread-safety: safe for concurrent Publish/Subscribe/Unsubscribe. Handlers
// run outside the lock, so a handler may subscribe or publish itself.
type SyncEventBus struct {
	logger *slog.Logger

	subscribers    map[domain.EventType][]subscription
	allSubscribers []subscription

	// mu protects subscribers, allSubscribers, closed and logger
	mu     sync.RWMutex
	closed bool

	idCounter atomic.Uint64
	published atomic.Uint64
	panics    atomic.Uint64
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// SetLogger sets the logger for this event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers event to its subscribers. Nil events and publishes on a
// closed bus are ignored. A panicking handler is logged and skipped.
func (bus *SyncEventBus) Publish(event domain.BusEvent) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	typed := bus.subscribers[event.Type()]
	handlers := make([]domain.EventHandler, 0, len(typed)+len(bus.allSubscribers))
	for _, sub := range typed {
		handlers = append(handlers, sub.handler)
	}
	for _, sub := range bus.allSubscribers {
		handlers = append(handlers, sub.handler)
	}
	logger := bus.logger
	bus.mu.RUnlock()

	bus.published.Add(1)
	if logger != nil {
		logger.Debug("event published",
			slog.String("event_type", string(event.Type())),
			slog.Int("handlers", len(handlers)))
	}

	for _, handler := range handlers {
		bus.callHandler(logger, handler, event)
	}
}

func (bus *SyncEventBus) callHandler(logger *slog.Logger, handler domain.EventHandler, event domain.BusEvent) {
	defer func() {
		if r := recover(); r != nil {
			bus.panics.Add(1)
			if logger != nil {
				logger.Error("event handler panicked",
					slog.Any("panic", r),
					slog.String("event_type", string(event.Type())))
			}
		}
	}()
	handler(event)
}

// Subscribe registers a handler for events of the given type.
// It panics on a nil handler or a closed bus.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.idCounter.Add(1)))
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler that receives every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("sub-all-%d", bus.idCounter.Add(1)))
	bus.allSubscribers = append(bus.allSubscribers, subscription{id: id, handler: handler})
	return id
}

// SubscribeSession registers a handler for events of one type that belong to
// a single session.
func (bus *SyncEventBus) SubscribeSession(eventType domain.EventType, session domain.SessionID, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}
	return bus.Subscribe(eventType, func(event domain.BusEvent) {
		if owned, ok := event.(interface{ Session() domain.SessionID }); ok && owned.Session() == session {
			handler(event)
		}
	})
}

// Unsubscribe removes a subscription while preserving the order of the rest.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for eventType, subs := range bus.subscribers {
		if kept, ok := without(subs, id); ok {
			bus.subscribers[eventType] = kept
			return
		}
	}
	if kept, ok := without(bus.allSubscribers, id); ok {
		bus.allSubscribers = kept
	}
}

func without(subs []subscription, id domain.SubscriptionID) ([]subscription, bool) {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...), true
		}
	}
	return subs, false
}

// HasSubscribers reports whether the event type has a typed or wildcard subscriber.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[eventType]) > 0 || len(bus.allSubscribers) > 0
}

// Close drops every subscription. Closing twice is an error.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return fmt.Errorf("event bus already closed")
	}

	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.allSubscribers = nil
	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.allSubscribers)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

// Published returns the number of events accepted by Publish.
func (bus *SyncEventBus) Published() uint64 { return bus.published.Load() }

// Panics returns the number of recovered handler panics.
func (bus *SyncEventBus) Panics() uint64 { return bus.panics.Load() }

var _ ports.EventBus = (*SyncEventBus)(nil)
