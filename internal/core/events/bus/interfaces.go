package bus

// EventBus defines an in-process pub/sub event bus.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string.
// - Synchronous delivery: Publish calls every handler in the caller goroutine before returning.
// - Deterministic order: handlers run in subscription order; nothing is queued or reordered.
// - Copy-on-iterate: handlers may subscribe or unsubscribe while a publish is in flight.
//   A handler added during delivery first sees the next event; one cancelled during
//   delivery is skipped if it has not run yet.
// - Error aggregation: handler errors are joined and returned from Publish/PublishBatch.
// - Optional observability: metrics are produced only when observers are registered.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// PublishBatch publishes events sequentially and aggregates errors across them.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for a specific event type and returns a
	// Subscription handle that can be used to cancel later.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil; does nothing.
	Unsubscribe(Subscription) error

	// AddObserver registers an observer to receive metrics callbacks.
	AddObserver(obs EventBusObserver)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns accumulated metrics. Metrics are only collected when at
	// least one observer is registered.
	GetMetrics() EventBusMetrics
	// Subscribers returns the number of active subscriptions for eventType.
	Subscribers(eventType string) int
}

// Event is an immutable message transported by the EventBus. Type is the routing key.
type Event interface {
	Type() string
}

// EventHandler is a user callback invoked per delivered event. If it returns an
// error, Publish/PublishBatch aggregates and returns it.
type EventHandler func(event Event) error

// Subscription represents a registered handler bound to an event type.
// Use Cancel or EventBus.Unsubscribe to stop receiving events.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventType returns the event type this subscription listens to.
	EventType() string
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries and errors. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error)
}

// EventBusMetrics represents a minimal set of counters; it is updated only when
// at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
