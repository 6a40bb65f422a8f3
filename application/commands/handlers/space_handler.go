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

// SpaceCommandHandler handles space commands
type SpaceCommandHandler struct {
	spaces *services.SpaceService
	logger *zap.Logger
}

// NewSpaceCommandHandler creates a new space command handler
func NewSpaceCommandHandler(spaces *services.SpaceService, logger *zap.Logger) *SpaceCommandHandler {
	return &SpaceCommandHandler{spaces: spaces, logger: logger}
}

// Handle dispatches on the concrete command type
func (h *SpaceCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.CreateSpaceCommand:
		return h.createSpace(ctx, c)
	case commands.UpdateSpaceCommand:
		return h.updateSpace(ctx, c)
	default:
		return fmt.Errorf("%w: %T", bus.ErrCommandTypeMismatch, cmd)
	}
}

func (h *SpaceCommandHandler) createSpace(ctx context.Context, cmd commands.CreateSpaceCommand) error {
	id, err := valueobjects.SpaceIDFromString(cmd.SpaceID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	var parentID *valueobjects.SpaceID
	if cmd.ParentID != nil {
		parent, err := valueobjects.SpaceIDFromString(*cmd.ParentID)
		if err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
		parentID = &parent
	}

	space, err := h.spaces.CreateSpace(ctx, id, cmd.UserID, cmd.Name, parentID)
	if err != nil {
		return err
	}

	h.logger.Debug("Space created",
		zap.String("space_id", space.ID().String()),
		zap.Bool("root", space.IsRoot()),
	)
	return nil
}

func (h *SpaceCommandHandler) updateSpace(ctx context.Context, cmd commands.UpdateSpaceCommand) error {
	id, err := valueobjects.SpaceIDFromString(cmd.SpaceID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	_, err = h.spaces.UpdateSpace(ctx, id, cmd.Name)
	return err
}
