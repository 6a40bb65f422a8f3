package queries

import (
	"gooey-backend/pkg/utils"
)

// GetNoteQuery fetches a note by id
type GetNoteQuery struct {
	NoteID string `json:"note_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetNoteQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// NoteView is the read model of a note
type NoteView struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
