package handlers

import (
	"context"
	"fmt"

	"gooey-backend/application/commands"
	"gooey-backend/application/commands/bus"
	"gooey-backend/application/services"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"

	"go.uber.org/zap"
)

// NoteCommandHandler handles note commands
type NoteCommandHandler struct {
	notes  *services.NoteService
	logger *zap.Logger
}

// NewNoteCommandHandler creates a new note command handler
func NewNoteCommandHandler(notes *services.NoteService, logger *zap.Logger) *NoteCommandHandler {
	return &NoteCommandHandler{notes: notes, logger: logger}
}

// Handle dispatches on the concrete command type
func (h *NoteCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.CreateNoteCommand:
		id, err := noteID(c.NoteID)
		if err != nil {
			return err
		}
		_, err = h.notes.Create(ctx, id, c.UserID, c.Name)
		return err

	case commands.UpdateNoteContentCommand:
		id, err := noteID(c.NoteID)
		if err != nil {
			return err
		}
		_, err = h.notes.UpdateContent(ctx, id, c.Content)
		return err

	case commands.DeleteNoteCommand:
		id, err := noteID(c.NoteID)
		if err != nil {
			return err
		}
		if err := h.notes.DeleteByID(ctx, id); err != nil {
			return err
		}
		h.logger.Debug("Note deleted", zap.String("note_id", id.String()))
		return nil

	default:
		return fmt.Errorf("%w: %T", bus.ErrCommandTypeMismatch, cmd)
	}
}

func noteID(raw string) (valueobjects.NoteID, error) {
	id, err := valueobjects.NoteIDFromString(raw)
	if err != nil {
		return valueobjects.NoteID{}, pkgerrors.NewValidationError(err.Error())
	}
	return id, nil
}
