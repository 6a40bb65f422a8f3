package entities

import (
	"fmt"
	"strings"
	"time"

	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
	pkgerrors "gooey-backend/pkg/errors"
)

// NodeKind identifies what a node on a space canvas represents
type NodeKind string

const (
	KindHead     NodeKind = "head"
	KindNote     NodeKind = "note"
	KindSubspace NodeKind = "subspace"
	KindURL      NodeKind = "url"

	// KindClose dismisses the palette. It is never persisted.
	KindClose NodeKind = "close"
)

var knownKinds = map[NodeKind]struct{}{
	KindHead:     {},
	KindNote:     {},
	KindSubspace: {},
	KindURL:      {},
	KindClose:    {},
}

// ParseNodeKind parses a palette or storage kind string
func ParseNodeKind(s string) (NodeKind, error) {
	kind := NodeKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownKinds[kind]; !ok {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown node kind %q", s))
	}
	return kind, nil
}

// ParsePaletteKind parses a kind chosen from the placement palette. Head nodes
// are created with their space and cannot be placed.
func ParsePaletteKind(s string) (NodeKind, error) {
	kind, err := ParseNodeKind(s)
	if err != nil {
		return "", err
	}
	if kind == KindHead {
		return "", pkgerrors.NewValidationError("head nodes cannot be placed")
	}
	return kind, nil
}

// Persistable reports whether nodes of this kind may be stored
func (k NodeKind) Persistable() bool {
	_, ok := knownKinds[k]
	return ok && k != KindClose
}

func (k NodeKind) String() string {
	return string(k)
}

// NodeDraft carries everything needed to create a node
type NodeDraft struct {
	SpaceID  valueobjects.SpaceID
	Kind     NodeKind
	Position valueobjects.Position
	SourceID *valueobjects.NodeID
	AnchorID *valueobjects.NodeID
	Ref      string
}

// Node is an element placed on a space canvas
type Node struct {
	id        valueobjects.NodeID
	spaceID   valueobjects.SpaceID
	kind      NodeKind
	position  valueobjects.Position
	sourceID  *valueobjects.NodeID
	anchorID  *valueobjects.NodeID
	ref       string
	createdAt time.Time

	events []events.DomainEvent
}

// NewNode creates a node from a draft and records a NodePlaced event
func NewNode(draft NodeDraft) (*Node, error) {
	if draft.SpaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("spaceID cannot be empty")
	}
	if !draft.Kind.Persistable() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("node kind %q cannot be persisted", draft.Kind))
	}
	if draft.Kind != KindHead && draft.SourceID == nil {
		return nil, pkgerrors.NewValidationError("sourceID is required for placed nodes")
	}

	now := time.Now()
	node := &Node{
		id:        valueobjects.NewNodeID(),
		spaceID:   draft.SpaceID,
		kind:      draft.Kind,
		position:  draft.Position,
		sourceID:  copyNodeID(draft.SourceID),
		anchorID:  copyNodeID(draft.AnchorID),
		ref:       draft.Ref,
		createdAt: now,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewNodePlaced(
		node.id,
		node.spaceID,
		string(node.kind),
		node.position,
		node.sourceID,
		node.anchorID,
		node.ref,
		now,
	))

	return node, nil
}

// ReconstructNode rebuilds a node from repository data
func ReconstructNode(
	id valueobjects.NodeID,
	spaceID valueobjects.SpaceID,
	kind NodeKind,
	position valueobjects.Position,
	sourceID, anchorID *valueobjects.NodeID,
	ref string,
	createdAt time.Time,
) (*Node, error) {
	if id.IsZero() || spaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("node and space IDs are required")
	}
	if !kind.Persistable() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("node kind %q cannot be persisted", kind))
	}

	return &Node{
		id:        id,
		spaceID:   spaceID,
		kind:      kind,
		position:  position,
		sourceID:  copyNodeID(sourceID),
		anchorID:  copyNodeID(anchorID),
		ref:       ref,
		createdAt: createdAt,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// SpaceID returns the space whose canvas holds the node
func (n *Node) SpaceID() valueobjects.SpaceID {
	return n.spaceID
}

// Kind returns the node kind
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Position returns the node's anchor position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Anchor is the point the node's footprint is centred on
func (n *Node) Anchor() valueobjects.Position {
	return n.position
}

// SourceID returns the node the placing drag started from, if any
func (n *Node) SourceID() *valueobjects.NodeID {
	return copyNodeID(n.sourceID)
}

// AnchorID returns the nearest overlapping node at drop time, if any
func (n *Node) AnchorID() *valueobjects.NodeID {
	return copyNodeID(n.anchorID)
}

// Ref returns the payload reference: a note ID, child space ID or URL
func (n *Node) Ref() string {
	return n.ref
}

// CreatedAt returns when the node was placed
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}

func copyNodeID(id *valueobjects.NodeID) *valueobjects.NodeID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
