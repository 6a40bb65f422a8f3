package eventbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
	pkgerrors "gooey-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*eventbridge.PutEventsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func noteEvents(n int) []events.DomainEvent {
	id := valueobjects.NewNoteID()
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewNoteContentUpdated(id, i, time.Unix(int64(i), 0))
	}
	return out
}

func TestPublisher_PublishBatchChunks(t *testing.T) {
	client := &mockClient{}
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return len(in.Entries) <= batchSize
	})).Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "gooey-events", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), noteEvents(23)))

	client.AssertNumberOfCalls(t, "PutEvents", 3)
	in := client.Calls[0].Arguments.Get(1).(*eventbridge.PutEventsInput)
	assert.Equal(t, Source, aws.ToString(in.Entries[0].Source))
	assert.Equal(t, events.TypeNoteContentUpdated, aws.ToString(in.Entries[0].DetailType))
	assert.Equal(t, "gooey-events", aws.ToString(in.Entries[0].EventBusName))
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		client := &mockClient{}
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), noteEvents(1)[0])
		assert.ErrorContains(t, err, "throttled")
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	})

	t.Run("failed entries", func(t *testing.T) {
		client := &mockClient{}
		client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}, nil)

		err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), noteEvents(1)[0])
		assert.ErrorContains(t, err, "1 events failed")
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	})

	t.Run("nothing to send", func(t *testing.T) {
		client := &mockClient{}
		require.NoError(t, NewPublisher(client, "bus", zap.NewNop()).PublishBatch(context.Background(), nil))
		client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
	})
}
