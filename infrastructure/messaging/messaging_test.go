package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, events.DomainEvent) error        { return f.err }
func (f failingPublisher) PublishBatch(context.Context, []events.DomainEvent) error { return f.err }

func TestLocalBus_DeliversByType(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())

	var placed, all []string
	bus.Subscribe(events.TypeNodePlaced, func(_ context.Context, e events.DomainEvent) {
		placed = append(placed, e.GetEventType())
	})
	bus.Subscribe(AllEvents, func(_ context.Context, e events.DomainEvent) {
		all = append(all, e.GetEventType())
	})

	noteID := valueobjects.NewNoteID()
	nodeEvent := events.NewNodePlaced(valueobjects.NewNodeID(), valueobjects.NewSpaceID(), "note",
		valueobjects.Origin(), nil, nil, "", time.Now())

	require.NoError(t, bus.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewNoteCreated(noteID, "guest", time.Now()),
		nodeEvent,
	}))

	assert.Equal(t, []string{events.TypeNodePlaced}, placed)
	assert.Equal(t, []string{events.TypeNoteCreated, events.TypeNodePlaced}, all)
}

func TestFanOut_AttemptsEveryPublisher(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	delivered := 0
	bus.Subscribe(AllEvents, func(context.Context, events.DomainEvent) { delivered++ })

	boom := errors.New("bus down")
	fan := FanOut{failingPublisher{err: boom}, bus}

	err := fan.Publish(context.Background(), events.NewNoteDeleted(valueobjects.NewNoteID(), time.Now()))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, delivered)
}
