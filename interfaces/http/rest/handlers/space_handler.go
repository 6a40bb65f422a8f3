package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"gooey-backend/application/commands"
	commandbus "gooey-backend/application/commands/bus"
	"gooey-backend/application/queries"
	querybus "gooey-backend/application/queries/bus"
	"gooey-backend/domain/config"
	"gooey-backend/pkg/common"
	pkgerrors "gooey-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SpaceHandler serves the space endpoints
type SpaceHandler struct {
	commandBus   *commandbus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(
	commandBus *commandbus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SpaceHandler {
	return &SpaceHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateSpaceRequest is the body of POST /api/v2/space
type CreateSpaceRequest struct {
	UserID              string  `json:"userId"`
	SpaceName           string  `json:"spaceName"`
	ParentContextNodeID *string `json:"parentContextNodeId,omitempty"`
}

// CreateSpaceResponse carries the path segment of the new space
type CreateSpaceResponse struct {
	URLPath string `json:"urlPath"`
}

// UpdateSpaceRequest is the body of PUT /api/v1/space/{id}
type UpdateSpaceRequest struct {
	Name *string `json:"name,omitempty"`
}

// Exists answers GET /api/v1/space/{id} with a bare boolean
func (h *SpaceHandler) Exists(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.SpaceExistsQuery{SpaceID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Breadcrumb returns the root-to-space chain as [{id, name}]
func (h *SpaceHandler) Breadcrumb(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetBreadcrumbQuery{SpaceID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result.(*queries.GetBreadcrumbResult).Items)
}

// Create creates a space. Only the guest user may create spaces and the
// name must not be blank.
func (h *SpaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSpaceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").
			WithCode(pkgerrors.CodeSpaceBadRequest).
			WithCause(err))
		return
	}

	if req.UserID != config.GuestUserID || strings.TrimSpace(req.SpaceName) == "" {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("userId must be the guest user and spaceName is required").
			WithCode(pkgerrors.CodeSpaceBadRequest))
		return
	}

	parentID := req.ParentContextNodeID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	spaceID := uuid.New().String()
	cmd := commands.CreateSpaceCommand{
		SpaceID:  spaceID,
		UserID:   req.UserID,
		Name:     req.SpaceName,
		ParentID: parentID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("Space created",
		zap.String("spaceID", spaceID),
		zap.Bool("child", parentID != nil),
	)
	common.RespondJSON(w, http.StatusCreated, CreateSpaceResponse{URLPath: spaceID})
}

// Update renames a space. An empty body is accepted and only checks existence.
func (h *SpaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSpaceRequest
	if err := common.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	cmd := commands.UpdateSpaceCommand{SpaceID: chi.URLParam(r, "id"), Name: req.Name}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

// ListNodes returns the nodes on a space's canvas in creation order
func (h *SpaceHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListSpaceNodesQuery{SpaceID: chi.URLParam(r, "id")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
