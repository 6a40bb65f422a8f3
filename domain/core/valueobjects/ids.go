package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// SpaceID identifies a space in the hierarchy
type SpaceID struct {
	value string
}

// NoteID identifies a persisted note
type NoteID struct {
	value string
}

// NodeID identifies a node placed on a space canvas
type NodeID struct {
	value string
}

// NewSpaceID creates a new random SpaceID
func NewSpaceID() SpaceID { return SpaceID{value: uuid.New().String()} }

// NewNoteID creates a new random NoteID
func NewNoteID() NoteID { return NoteID{value: uuid.New().String()} }

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID { return NodeID{value: uuid.New().String()} }

// SpaceIDFromString parses a SpaceID
func SpaceIDFromString(id string) (SpaceID, error) {
	v, err := parseID("space", id)
	return SpaceID{value: v}, err
}

// NoteIDFromString parses a NoteID
func NoteIDFromString(id string) (NoteID, error) {
	v, err := parseID("note", id)
	return NoteID{value: v}, err
}

// NodeIDFromString parses a NodeID
func NodeIDFromString(id string) (NodeID, error) {
	v, err := parseID("node", id)
	return NodeID{value: v}, err
}

func (id SpaceID) String() string { return id.value }
func (id NoteID) String() string  { return id.value }
func (id NodeID) String() string  { return id.value }

func (id SpaceID) IsZero() bool { return id.value == "" }
func (id NoteID) IsZero() bool  { return id.value == "" }
func (id NodeID) IsZero() bool  { return id.value == "" }

func (id SpaceID) Equals(other SpaceID) bool { return id.value == other.value }
func (id NoteID) Equals(other NoteID) bool   { return id.value == other.value }
func (id NodeID) Equals(other NodeID) bool   { return id.value == other.value }

func (id SpaceID) MarshalText() ([]byte, error) { return []byte(id.value), nil }
func (id NoteID) MarshalText() ([]byte, error)  { return []byte(id.value), nil }
func (id NodeID) MarshalText() ([]byte, error)  { return []byte(id.value), nil }

func (id *SpaceID) UnmarshalText(b []byte) error { return unmarshalID("space", b, &id.value) }
func (id *NoteID) UnmarshalText(b []byte) error  { return unmarshalID("note", b, &id.value) }
func (id *NodeID) UnmarshalText(b []byte) error  { return unmarshalID("node", b, &id.value) }

func parseID(kind, id string) (string, error) {
	if id == "" {
		return "", errors.New(kind + " ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.New(kind + " ID must be a valid UUID")
	}
	return id, nil
}

func unmarshalID(kind string, b []byte, dst *string) error {
	if len(b) == 0 {
		*dst = ""
		return nil
	}
	v, err := parseID(kind, string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
