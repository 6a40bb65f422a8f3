package handlers

import (
	"errors"
	"io"
	"net/http"

	"gooey-backend/application/commands"
	commandbus "gooey-backend/application/commands/bus"
	"gooey-backend/application/queries"
	querybus "gooey-backend/application/queries/bus"
	"gooey-backend/pkg/auth"
	"gooey-backend/pkg/common"
	pkgerrors "gooey-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteHandler serves the note endpoints
type NoteHandler struct {
	commandBus   *commandbus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(
	commandBus *commandbus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NoteHandler {
	return &NoteHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateNoteRequest is the body of POST /api/v1/note
type CreateNoteRequest struct {
	Name string `json:"name"`
}

// UpdateNoteRequest is the body of PUT /api/v1/note/{id}
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// Create creates an empty note owned by the caller and returns it
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := common.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	noteID := uuid.New().String()
	cmd := commands.CreateNoteCommand{
		NoteID: noteID,
		UserID: auth.FromContext(r.Context()).UserID,
		Name:   req.Name,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondNote(w, r, noteID, http.StatusCreated)
}

// Get returns a note
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondNote(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

// Update replaces a note's content and returns the updated note
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	noteID := chi.URLParam(r, "id")
	if err := h.commandBus.Send(r.Context(), commands.UpdateNoteContentCommand{NoteID: noteID, Content: req.Content}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondNote(w, r, noteID, http.StatusOK)
}

// Delete removes a note
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.DeleteNoteCommand{NoteID: chi.URLParam(r, "id")}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func (h *NoteHandler) respondNote(w http.ResponseWriter, r *http.Request, noteID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetNoteQuery{NoteID: noteID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}
