package entities

import (
	"fmt"
	"strings"
	"time"

	"gooey-backend/domain/config"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
	pkgerrors "gooey-backend/pkg/errors"
)

// Space is a canvas in the space hierarchy. Every space is rooted at a head node.
type Space struct {
	id         valueobjects.SpaceID
	userID     string
	name       string
	parentID   *valueobjects.SpaceID
	headNodeID valueobjects.NodeID
	createdAt  time.Time
	updatedAt  time.Time

	events []events.DomainEvent
}

// NewSpace creates a space together with its head node at the origin
func NewSpace(id valueobjects.SpaceID, userID, name string, parentID *valueobjects.SpaceID, cfg *config.DomainConfig) (*Space, *Node, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if id.IsZero() {
		return nil, nil, pkgerrors.NewValidationError("space ID is required")
	}
	if userID == "" {
		return nil, nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	name, err := validateSpaceName(name, cfg)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	space := &Space{
		id:        id,
		userID:    userID,
		name:      name,
		parentID:  copySpaceID(parentID),
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}

	head, err := NewNode(NodeDraft{
		SpaceID:  space.id,
		Kind:     KindHead,
		Position: valueobjects.Origin(),
	})
	if err != nil {
		return nil, nil, err
	}
	space.headNodeID = head.ID()

	space.addEvent(events.NewSpaceCreated(space.id, userID, name, space.parentID, now))

	return space, head, nil
}

// ReconstructSpace rebuilds a space from repository data
func ReconstructSpace(
	id valueobjects.SpaceID,
	userID, name string,
	parentID *valueobjects.SpaceID,
	headNodeID valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) (*Space, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("space ID is required")
	}

	return &Space{
		id:         id,
		userID:     userID,
		name:       name,
		parentID:   copySpaceID(parentID),
		headNodeID: headNodeID,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		events:     []events.DomainEvent{},
	}, nil
}

// Rename changes the space's display name
func (s *Space) Rename(name string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	name, err := validateSpaceName(name, cfg)
	if err != nil {
		return err
	}
	s.name = name
	s.updatedAt = time.Now()
	return nil
}

// ID returns the space's unique identifier
func (s *Space) ID() valueobjects.SpaceID {
	return s.id
}

// UserID returns the owner's ID
func (s *Space) UserID() string {
	return s.userID
}

// Name returns the display name
func (s *Space) Name() string {
	return s.name
}

// ParentID returns the parent space, nil for a root space
func (s *Space) ParentID() *valueobjects.SpaceID {
	return copySpaceID(s.parentID)
}

// IsRoot reports whether the space has no parent
func (s *Space) IsRoot() bool {
	return s.parentID == nil
}

// HeadNodeID returns the node the canvas is rooted at
func (s *Space) HeadNodeID() valueobjects.NodeID {
	return s.headNodeID
}

func (s *Space) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Space) UpdatedAt() time.Time {
	return s.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (s *Space) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *Space) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

func (s *Space) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}

func validateSpaceName(name string, cfg *config.DomainConfig) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.NewValidationError("space name cannot be empty")
	}
	if len(name) > cfg.MaxSpaceNameLength {
		return "", pkgerrors.NewValidationError(
			fmt.Sprintf("space name cannot exceed %d characters", cfg.MaxSpaceNameLength))
	}
	return name, nil
}

func copySpaceID(id *valueobjects.SpaceID) *valueobjects.SpaceID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
