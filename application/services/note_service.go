package services

import (
	"context"

	"gooey-backend/application/ports"
	"gooey-backend/domain/config"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"

	"go.uber.org/zap"
)

// NoteService owns note documents referenced by note nodes
type NoteService struct {
	notes     ports.NoteRepository
	publisher ports.EventPublisher
	config    *config.DomainConfig
	logger    *zap.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	notes ports.NoteRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *NoteService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &NoteService{
		notes:     notes,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// Create stores a new empty note
func (s *NoteService) Create(ctx context.Context, id valueobjects.NoteID, userID, name string) (*entities.Note, error) {
	note, err := s.create(ctx, id, userID, name)
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, s.logger, note)
	return note, nil
}

// create persists a note without publishing its events
func (s *NoteService) create(ctx context.Context, id valueobjects.NoteID, userID, name string) (*entities.Note, error) {
	note, err := entities.NewNote(id, userID, name, s.config)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Save(ctx, note); err != nil {
		return nil, pkgerrors.NewDatabaseError("save note", err)
	}

	s.logger.Debug("Note created",
		zap.String("noteID", note.ID().String()),
		zap.String("userID", userID),
	)
	return note, nil
}

// discard removes a note whose events were never published
func (s *NoteService) discard(ctx context.Context, id valueobjects.NoteID) error {
	_, err := s.notes.Delete(ctx, id)
	return err
}

// FindByID returns the note, or nil without error when it does not exist
func (s *NoteService) FindByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return note, nil
}

// ExistsByID reports whether the note exists
func (s *NoteService) ExistsByID(ctx context.Context, id valueobjects.NoteID) (bool, error) {
	return s.notes.Exists(ctx, id)
}

// UpdateContent replaces the note body. An absent note is left untouched and reported as NotFound.
func (s *NoteService) UpdateContent(ctx context.Context, id valueobjects.NoteID, content string) (*entities.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
		}
		return nil, err
	}

	if err := note.ReplaceContent(content, s.config); err != nil {
		return nil, err
	}

	if err := s.notes.Save(ctx, note); err != nil {
		s.logger.Error("Failed to save note content",
			zap.String("noteID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewInternalError("failed to update note").
			WithCode(pkgerrors.CodeNoteUpdateFailed).
			WithCause(err)
	}

	publishEvents(ctx, s.publisher, s.logger, note)
	return note, nil
}

// DeleteByID removes the note, failing with NotFound when nothing was deleted
func (s *NoteService) DeleteByID(ctx context.Context, id valueobjects.NoteID) error {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
		}
		return err
	}

	deleted, err := s.notes.Delete(ctx, id)
	if err != nil {
		return pkgerrors.NewInternalError("failed to delete note").
			WithCode(pkgerrors.CodeNoteDeleteFailed).
			WithCause(err)
	}
	if deleted == 0 {
		return pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
	}

	note.MarkDeleted()
	publishEvents(ctx, s.publisher, s.logger, note)
	return nil
}
