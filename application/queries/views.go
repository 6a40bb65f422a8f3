package queries

import (
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/events"
	"gooey-backend/pkg/utils"
)

// NewNodeView maps a node to its read model
func NewNodeView(n *entities.Node) NodeView {
	view := NodeView{
		ID:        n.ID().String(),
		SpaceID:   n.SpaceID().String(),
		Kind:      n.Kind().String(),
		X:         n.Position().X(),
		Y:         n.Position().Y(),
		Ref:       n.Ref(),
		CreatedAt: utils.FormatRFC3339(n.CreatedAt()),
	}
	if id := n.SourceID(); id != nil {
		s := id.String()
		view.SourceID = &s
	}
	if id := n.AnchorID(); id != nil {
		s := id.String()
		view.AnchorID = &s
	}
	return view
}

// NewPlacedNodeView maps a placement event to the node read model
func NewPlacedNodeView(e events.NodePlaced) NodeView {
	view := NodeView{
		ID:        e.NodeID.String(),
		SpaceID:   e.SpaceID.String(),
		Kind:      e.Kind,
		X:         e.Position.X(),
		Y:         e.Position.Y(),
		Ref:       e.Ref,
		CreatedAt: utils.FormatRFC3339(e.Timestamp),
	}
	if e.SourceID != nil {
		s := e.SourceID.String()
		view.SourceID = &s
	}
	if e.AnchorID != nil {
		s := e.AnchorID.String()
		view.AnchorID = &s
	}
	return view
}

// NewNoteView maps a note to its read model
func NewNoteView(n *entities.Note) NoteView {
	return NoteView{
		ID:        n.ID().String(),
		UserID:    n.UserID(),
		Name:      n.Name(),
		Content:   n.Content(),
		CreatedAt: utils.FormatRFC3339(n.CreatedAt()),
		UpdatedAt: utils.FormatRFC3339(n.UpdatedAt()),
	}
}
