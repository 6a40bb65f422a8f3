package handlers

import (
	"context"
	"fmt"

	"gooey-backend/application/queries"
	"gooey-backend/application/queries/bus"
	"gooey-backend/application/services"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"

	"go.uber.org/zap"
)

// NoteQueryHandler answers note read queries
type NoteQueryHandler struct {
	notes  *services.NoteService
	logger *zap.Logger
}

// NewNoteQueryHandler creates a new note query handler
func NewNoteQueryHandler(notes *services.NoteService, logger *zap.Logger) *NoteQueryHandler {
	return &NoteQueryHandler{notes: notes, logger: logger}
}

// Handle answers GetNoteQuery
func (h *NoteQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetNoteQuery)
	if !ok {
		return nil, fmt.Errorf("%w: %T", bus.ErrQueryTypeMismatch, query)
	}

	id, err := valueobjects.NoteIDFromString(q.NoteID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	note, err := h.notes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
	}

	view := queries.NewNoteView(note)
	return &view, nil
}

// Register wires every query to its handler
func Register(b *bus.QueryBus, spaces *SpaceQueryHandler, notes *NoteQueryHandler) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.SpaceExistsQuery{}, spaces},
		{queries.GetBreadcrumbQuery{}, spaces},
		{queries.ListSpaceNodesQuery{}, spaces},
		{queries.GetNoteQuery{}, notes},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
