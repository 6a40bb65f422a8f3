package canvas

import (
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
)

// Phase is the derived state of a drag session
type Phase int

const (
	// PhaseIdle: nothing is being dragged and no drop is pending
	PhaseIdle Phase = iota
	// PhaseDragging: a drag from a start node is in progress
	PhaseDragging
	// PhaseAwaitingDisambiguation: a drop happened and the palette is open
	PhaseAwaitingDisambiguation
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseAwaitingDisambiguation:
		return "awaiting_disambiguation"
	default:
		return "idle"
	}
}

// Session is the state of one canvas view's drag interaction.
// It is a value; transitions return a new Session.
type Session struct {
	isDragging   bool
	startNode    *entities.Node
	dragPosition *valueobjects.Position
	dropPosition *valueobjects.Position
}

// Event is a drag interaction input
type Event interface {
	isEvent()
}

// DragStarted begins a drag from Node
type DragStarted struct {
	Node *entities.Node
}

// DragMoved reports the pointer position relative to the canvas layer.
// A nil Position means the pointer could not be resolved.
type DragMoved struct {
	Position *valueobjects.Position
}

// DragEnded releases the pointer
type DragEnded struct{}

// PaletteSelected picks a kind for the pending drop
type PaletteSelected struct {
	Kind entities.NodeKind
}

func (DragStarted) isEvent()     {}
func (DragMoved) isEvent()       {}
func (DragEnded) isEvent()       {}
func (PaletteSelected) isEvent() {}

// PlacementRequest is emitted when a palette choice completes a drop
type PlacementRequest struct {
	Kind         entities.NodeKind
	StartNode    *entities.Node
	DropPosition valueobjects.Position
}

// Phase derives the current phase from the session fields
func (s Session) Phase() Phase {
	switch {
	case s.isDragging:
		return PhaseDragging
	case s.dropPosition != nil && s.startNode != nil:
		return PhaseAwaitingDisambiguation
	default:
		return PhaseIdle
	}
}

// IsDragging reports whether a drag is in progress
func (s Session) IsDragging() bool {
	return s.isDragging
}

// StartNode is the node the drag started from, retained until the palette resolves
func (s Session) StartNode() *entities.Node {
	return s.startNode
}

// DragPosition is the live pointer position while dragging
func (s Session) DragPosition() *valueobjects.Position {
	return copyPosition(s.dragPosition)
}

// DropPosition is the frozen release position while the palette is open
func (s Session) DropPosition() *valueobjects.Position {
	return copyPosition(s.dropPosition)
}

// Apply runs one transition. The request is non-nil only when a palette
// selection completes a valid drop.
func (s Session) Apply(event Event) (Session, *PlacementRequest) {
	switch e := event.(type) {
	case DragStarted:
		return s.start(e), nil
	case DragMoved:
		return s.move(e), nil
	case DragEnded:
		return s.end(), nil
	case PaletteSelected:
		return s.selectKind(e)
	default:
		return s, nil
	}
}

// A new grab abandons any pending drop.
func (s Session) start(e DragStarted) Session {
	if e.Node == nil {
		return s
	}
	anchor := e.Node.Anchor()
	return Session{
		isDragging:   true,
		startNode:    e.Node,
		dragPosition: &anchor,
	}
}

func (s Session) move(e DragMoved) Session {
	if !s.isDragging || e.Position == nil {
		return s
	}
	s.dragPosition = copyPosition(e.Position)
	return s
}

func (s Session) end() Session {
	if !s.isDragging {
		return s
	}
	if s.dragPosition == nil {
		return Session{}
	}
	return Session{
		startNode:    s.startNode,
		dropPosition: s.dragPosition,
	}
}

func (s Session) selectKind(e PaletteSelected) (Session, *PlacementRequest) {
	if s.startNode == nil || s.dropPosition == nil || e.Kind == entities.KindClose {
		return Session{}, nil
	}
	return Session{}, &PlacementRequest{
		Kind:         e.Kind,
		StartNode:    s.startNode,
		DropPosition: *s.dropPosition,
	}
}

func copyPosition(p *valueobjects.Position) *valueobjects.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
