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

// Note is a text document referenced from note nodes
type Note struct {
	id        valueobjects.NoteID
	userID    string
	name      string
	content   string
	createdAt time.Time
	updatedAt time.Time

	events []events.DomainEvent
}

// NewNote creates an empty note. A blank name falls back to the configured default.
func NewNote(id valueobjects.NoteID, userID, name string, cfg *config.DomainConfig) (*Note, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("note ID is required")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = cfg.DefaultNoteName
	}
	if len(name) > cfg.MaxNoteNameLength {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("note name cannot exceed %d characters", cfg.MaxNoteNameLength))
	}

	now := time.Now()
	note := &Note{
		id:        id,
		userID:    userID,
		name:      name,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}
	note.addEvent(events.NewNoteCreated(note.id, userID, now))

	return note, nil
}

// ReconstructNote rebuilds a note from repository data
func ReconstructNote(
	id valueobjects.NoteID,
	userID, name, content string,
	createdAt, updatedAt time.Time,
) (*Note, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("note ID is required")
	}

	return &Note{
		id:        id,
		userID:    userID,
		name:      name,
		content:   content,
		createdAt: createdAt,
		updatedAt: updatedAt,
		events:    []events.DomainEvent{},
	}, nil
}

// ReplaceContent overwrites the whole note body
func (n *Note) ReplaceContent(content string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if len(content) > cfg.MaxNoteContentLength {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("note content cannot exceed %d bytes", cfg.MaxNoteContentLength))
	}

	n.content = content
	n.updatedAt = time.Now()
	n.addEvent(events.NewNoteContentUpdated(n.id, len(content), n.updatedAt))

	return nil
}

// MarkDeleted records that the note is being removed
func (n *Note) MarkDeleted() {
	n.addEvent(events.NewNoteDeleted(n.id, time.Now()))
}

// ID returns the note's unique identifier
func (n *Note) ID() valueobjects.NoteID {
	return n.id
}

// UserID returns the owner's ID
func (n *Note) UserID() string {
	return n.userID
}

func (n *Note) Name() string {
	return n.name
}

func (n *Note) Content() string {
	return n.content
}

func (n *Note) CreatedAt() time.Time {
	return n.createdAt
}

func (n *Note) UpdatedAt() time.Time {
	return n.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Note) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Note) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

func (n *Note) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
