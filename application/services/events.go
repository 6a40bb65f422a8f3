package services

import (
	"context"

	"gooey-backend/application/ports"
	"gooey-backend/domain/events"

	"go.uber.org/zap"
)

type eventSource interface {
	GetUncommittedEvents() []events.DomainEvent
	MarkEventsAsCommitted()
}

// publishEvents sends the uncommitted events of already persisted aggregates.
// Publishing is best effort: the write has happened, so failures are only logged.
func publishEvents(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, sources ...eventSource) {
	var pending []events.DomainEvent
	for _, src := range sources {
		pending = append(pending, src.GetUncommittedEvents()...)
	}
	if len(pending) == 0 || publisher == nil {
		return
	}

	if err := publisher.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
		return
	}

	for _, src := range sources {
		src.MarkEventsAsCommitted()
	}
}
