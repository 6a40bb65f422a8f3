package commands

import (
	"gooey-backend/pkg/utils"
)

// CreateNoteCommand creates an empty note
type CreateNoteCommand struct {
	NoteID string `json:"note_id" validate:"required,uuid"`
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"max=200"`
}

// Validate validates the command
func (c CreateNoteCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdateNoteContentCommand replaces a note's content
type UpdateNoteContentCommand struct {
	NoteID  string `json:"note_id" validate:"required,uuid"`
	Content string `json:"content"`
}

// Validate validates the command
func (c UpdateNoteContentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteNoteCommand deletes a note
type DeleteNoteCommand struct {
	NoteID string `json:"note_id" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteNoteCommand) Validate() error {
	return utils.ValidateStruct(c)
}
