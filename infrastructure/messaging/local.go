package messaging

import (
	"context"
	"sync"

	"gooey-backend/application/ports"
	"gooey-backend/domain/events"

	"go.uber.org/zap"
)

// Handler receives events delivered in process
type Handler func(ctx context.Context, event events.DomainEvent)

// AllEvents subscribes a handler to every event type
const AllEvents = "*"

// LocalBus delivers events synchronously to in-process subscribers. It backs
// realtime fan-out (canvas broadcasts) and development setups without AWS.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

var _ ports.EventPublisher = (*LocalBus)(nil)

// NewLocalBus creates an empty bus
func NewLocalBus(logger *zap.Logger) *LocalBus {
	return &LocalBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type, or AllEvents
func (b *LocalBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers a single event
func (b *LocalBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.GetEventType()])+len(b.handlers[AllEvents]))
	handlers = append(handlers, b.handlers[event.GetEventType()]...)
	handlers = append(handlers, b.handlers[AllEvents]...)
	b.mu.RUnlock()

	b.logger.Debug("Delivering event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Int("subscribers", len(handlers)),
	)

	for _, h := range handlers {
		h(ctx, event)
	}
	return nil
}

// PublishBatch delivers events in order
func (b *LocalBus) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
