package commands

import (
	"gooey-backend/pkg/utils"
)

// CreateSpaceCommand creates a space, optionally nested under a parent
type CreateSpaceCommand struct {
	SpaceID  string  `json:"space_id" validate:"required,uuid"`
	UserID   string  `json:"user_id" validate:"required"`
	Name     string  `json:"name" validate:"required,max=100"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
}

// Validate validates the command
func (c CreateSpaceCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdateSpaceCommand guards on a space's existence and optionally renames it
type UpdateSpaceCommand struct {
	SpaceID string  `json:"space_id" validate:"required,uuid"`
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate validates the command
func (c UpdateSpaceCommand) Validate() error {
	return utils.ValidateStruct(c)
}
