package events

import (
	"time"

	"gooey-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type names
const (
	TypeSpaceCreated       = "space.created"
	TypeNodePlaced         = "node.placed"
	TypeNoteCreated        = "note.created"
	TypeNoteContentUpdated = "note.content_updated"
	TypeNoteDeleted        = "note.deleted"
)

func base(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Space Events

// SpaceCreated is raised when a space is added to the hierarchy
type SpaceCreated struct {
	BaseEvent
	SpaceID  valueobjects.SpaceID  `json:"space_id"`
	UserID   string                `json:"user_id"`
	Name     string                `json:"name"`
	ParentID *valueobjects.SpaceID `json:"parent_id,omitempty"`
}

// NewSpaceCreated creates a SpaceCreated event
func NewSpaceCreated(spaceID valueobjects.SpaceID, userID, name string, parentID *valueobjects.SpaceID, timestamp time.Time) SpaceCreated {
	return SpaceCreated{
		BaseEvent: base(spaceID.String(), TypeSpaceCreated, timestamp),
		SpaceID:   spaceID,
		UserID:    userID,
		Name:      name,
		ParentID:  parentID,
	}
}

// Node Events

// NodePlaced is raised when a drop on the canvas materialises a node
type NodePlaced struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	SpaceID  valueobjects.SpaceID  `json:"space_id"`
	Kind     string                `json:"kind"`
	Position valueobjects.Position `json:"position"`
	SourceID *valueobjects.NodeID  `json:"source_id,omitempty"`
	AnchorID *valueobjects.NodeID  `json:"anchor_id,omitempty"`
	Ref      string                `json:"ref,omitempty"`
}

// NewNodePlaced creates a NodePlaced event
func NewNodePlaced(
	nodeID valueobjects.NodeID,
	spaceID valueobjects.SpaceID,
	kind string,
	position valueobjects.Position,
	sourceID, anchorID *valueobjects.NodeID,
	ref string,
	timestamp time.Time,
) NodePlaced {
	return NodePlaced{
		BaseEvent: base(nodeID.String(), TypeNodePlaced, timestamp),
		NodeID:    nodeID,
		SpaceID:   spaceID,
		Kind:      kind,
		Position:  position,
		SourceID:  sourceID,
		AnchorID:  anchorID,
		Ref:       ref,
	}
}

// Note Events

// NoteCreated is raised when a note document is created
type NoteCreated struct {
	BaseEvent
	NoteID valueobjects.NoteID `json:"note_id"`
	UserID string              `json:"user_id"`
}

// NewNoteCreated creates a NoteCreated event
func NewNoteCreated(noteID valueobjects.NoteID, userID string, timestamp time.Time) NoteCreated {
	return NoteCreated{
		BaseEvent: base(noteID.String(), TypeNoteCreated, timestamp),
		NoteID:    noteID,
		UserID:    userID,
	}
}

// NoteContentUpdated is raised when a note's content is replaced
type NoteContentUpdated struct {
	BaseEvent
	NoteID valueobjects.NoteID `json:"note_id"`
	Length int                 `json:"length"`
}

// NewNoteContentUpdated creates a NoteContentUpdated event
func NewNoteContentUpdated(noteID valueobjects.NoteID, length int, timestamp time.Time) NoteContentUpdated {
	return NoteContentUpdated{
		BaseEvent: base(noteID.String(), TypeNoteContentUpdated, timestamp),
		NoteID:    noteID,
		Length:    length,
	}
}

// NoteDeleted is raised when a note is removed
type NoteDeleted struct {
	BaseEvent
	NoteID valueobjects.NoteID `json:"note_id"`
}

// NewNoteDeleted creates a NoteDeleted event
func NewNoteDeleted(noteID valueobjects.NoteID, timestamp time.Time) NoteDeleted {
	return NoteDeleted{
		BaseEvent: base(noteID.String(), TypeNoteDeleted, timestamp),
		NoteID:    noteID,
	}
}
