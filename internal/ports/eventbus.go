package ports

import (
	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

// EventBus publishes transport and session events to observers.
//
// Transports talk to their control surface through commands and listener
// callbacks; the bus is the fan-out for everything else that wants to watch
// (presenters, loggers, the CLI status line).
//
// Thread-safety: implementations must allow Publish from the scheduler's
// reporting path and Subscribe from the interactive goroutine concurrently.
//
// Example usage:
//
//	subID := bus.Subscribe(domain.EventTransportPlayed, func(event domain.BusEvent) {
//	    e := event.(domain.TransportPlayedEvent)
//	    view.SetPlaying(e.Position)
//	})
//	defer bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type and to all
	// wildcard subscribers. It must not block for long periods.
	Publish(event domain.BusEvent)

	// Subscribe registers a handler for one event type.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown ids are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives every event.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether anyone listens for the event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions; later publishes are ignored.
	Close() error
}
