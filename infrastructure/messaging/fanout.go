package messaging

import (
	"context"
	"errors"

	"gooey-backend/application/ports"
	"gooey-backend/domain/events"
)

// FanOut publishes every event to each of its publishers. All publishers are
// attempted; their errors are joined.
type FanOut []ports.EventPublisher

var _ ports.EventPublisher = FanOut(nil)

// Publish sends a single event to every publisher
func (f FanOut) Publish(ctx context.Context, event events.DomainEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishBatch sends events to every publisher
func (f FanOut) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishBatch(ctx, domainEvents); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
