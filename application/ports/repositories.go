package ports

import (
	"context"

	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
)

// SpaceRepository defines the interface for space persistence.
// GetByID returns a NotFound AppError when the space does not exist.
type SpaceRepository interface {
	// Save persists a space (create or update)
	Save(ctx context.Context, space *entities.Space) error

	// GetByID retrieves a space by its ID
	GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error)

	// Exists reports whether a space with the given ID is stored
	Exists(ctx context.Context, id valueobjects.SpaceID) (bool, error)

	// Delete removes the space record. Deleting an absent space is not an error.
	Delete(ctx context.Context, id valueobjects.SpaceID) error
}

// NodeRepository defines the interface for canvas node persistence
type NodeRepository interface {
	// Save persists a node
	Save(ctx context.Context, node *entities.Node) error

	// GetByID retrieves a node by its ID
	GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// GetBySpaceID retrieves every node on a space's canvas in creation order
	GetBySpaceID(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Node, error)

	// Delete removes a node. Deleting an absent node is not an error.
	Delete(ctx context.Context, node *entities.Node) error
}

// NoteRepository defines the interface for note persistence
type NoteRepository interface {
	// Save persists a note (create or update)
	Save(ctx context.Context, note *entities.Note) error

	// GetByID retrieves a note by its ID
	GetByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error)

	// Exists reports whether a note with the given ID is stored
	Exists(ctx context.Context, id valueobjects.NoteID) (bool, error)

	// Delete removes a note and returns how many records were deleted
	Delete(ctx context.Context, id valueobjects.NoteID) (int, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// NodeCreator materialises a placement decision on a space canvas
type NodeCreator interface {
	CreateNode(ctx context.Context, draft entities.NodeDraft) (*entities.Node, error)
}
