package services

import (
	"context"
	"errors"
	"testing"

	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
	"gooey-backend/infrastructure/persistence/memory"
	pkgerrors "gooey-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoteService_UpdateContent_MissingNote(t *testing.T) {
	// Arrange
	repo := new(MockNoteRepository)
	id := valueobjects.NewNoteID()
	repo.On("GetByID", mock.Anything, id).Return(nil, pkgerrors.NewNotFoundError("note"))

	service := NewNoteService(repo, nil, nil, zap.NewNop())

	// Act
	note, err := service.UpdateContent(context.Background(), id, "text")

	// Assert
	assert.Nil(t, note)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, pkgerrors.CodeNoteNotFound, pkgerrors.GetAppError(err).Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestNoteService_UpdateContent_SaveFailure(t *testing.T) {
	repo := new(MockNoteRepository)
	existing, err := entities.NewNote(valueobjects.NewNoteID(), "guest", "n", nil)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, existing.ID()).Return(existing, nil)
	repo.On("Save", mock.Anything, existing).Return(errors.New("conditional check failed"))

	service := NewNoteService(repo, nil, nil, zap.NewNop())

	_, err = service.UpdateContent(context.Background(), existing.ID(), "text")

	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNoteUpdateFailed, pkgerrors.GetAppError(err).Code)
	repo.AssertExpectations(t)
}

func TestNoteService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	service := NewNoteService(memory.NewNoteRepository(), publisher, nil, zap.NewNop())

	note, err := service.Create(ctx, valueobjects.NewNoteID(), "guest", "Ideas")
	require.NoError(t, err)

	exists, err := service.ExistsByID(ctx, note.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	updated, err := service.UpdateContent(ctx, note.ID(), "full replacement")
	require.NoError(t, err)
	assert.Equal(t, "full replacement", updated.Content())

	found, err := service.FindByID(ctx, note.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "full replacement", found.Content())

	require.NoError(t, service.DeleteByID(ctx, note.ID()))

	found, err = service.FindByID(ctx, note.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	err = service.DeleteByID(ctx, note.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.Equal(t, []string{
		events.TypeNoteCreated,
		events.TypeNoteContentUpdated,
		events.TypeNoteDeleted,
	}, publisher.types())
}

func TestNoteService_DeleteByID_NothingDeleted(t *testing.T) {
	repo := new(MockNoteRepository)
	existing, err := entities.NewNote(valueobjects.NewNoteID(), "guest", "n", nil)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, existing.ID()).Return(existing, nil)
	repo.On("Delete", mock.Anything, existing.ID()).Return(0, nil)

	service := NewNoteService(repo, nil, nil, zap.NewNop())

	err = service.DeleteByID(context.Background(), existing.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	repo.AssertExpectations(t)
}

func TestNoteService_PublishFailureDoesNotFailWrite(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("eventbridge down")}
	service := NewNoteService(memory.NewNoteRepository(), publisher, nil, zap.NewNop())

	note, err := service.Create(context.Background(), valueobjects.NewNoteID(), "guest", "n")
	require.NoError(t, err)
	assert.NotEmpty(t, note.GetUncommittedEvents())
}
