// Package memory provides in-process repositories used for local runs and tests.
// Entities are copied on the way in and out so callers never share state with the store.
package memory

import (
	"context"
	"sync"

	"gooey-backend/application/ports"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"
)

// SpaceRepository is an in-memory ports.SpaceRepository
type SpaceRepository struct {
	mu     sync.RWMutex
	spaces map[string]*entities.Space
}

var _ ports.SpaceRepository = (*SpaceRepository)(nil)

// NewSpaceRepository creates an empty space repository
func NewSpaceRepository() *SpaceRepository {
	return &SpaceRepository{spaces: make(map[string]*entities.Space)}
}

// Save stores a copy of the space
func (r *SpaceRepository) Save(ctx context.Context, space *entities.Space) error {
	c, err := copySpace(space)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.spaces[space.ID().String()] = c
	return nil
}

// GetByID returns a copy of the stored space
func (r *SpaceRepository) GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	r.mu.RLock()
	space, ok := r.spaces[id.String()]
	r.mu.RUnlock()

	if !ok {
		return nil, pkgerrors.NewNotFoundError("space")
	}
	return copySpace(space)
}

// Exists reports whether the space is stored
func (r *SpaceRepository) Exists(ctx context.Context, id valueobjects.SpaceID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.spaces[id.String()]
	return ok, nil
}

// Delete removes the space
func (r *SpaceRepository) Delete(ctx context.Context, id valueobjects.SpaceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.spaces, id.String())
	return nil
}

// NodeRepository is an in-memory ports.NodeRepository that keeps per-space creation order
type NodeRepository struct {
	mu      sync.RWMutex
	nodes   map[string]*entities.Node
	bySpace map[string][]string
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// NewNodeRepository creates an empty node repository
func NewNodeRepository() *NodeRepository {
	return &NodeRepository{
		nodes:   make(map[string]*entities.Node),
		bySpace: make(map[string][]string),
	}
}

// Save stores a copy of the node
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	c, err := copyNode(node)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := node.ID().String()
	if _, exists := r.nodes[id]; !exists {
		spaceID := node.SpaceID().String()
		r.bySpace[spaceID] = append(r.bySpace[spaceID], id)
	}
	r.nodes[id] = c
	return nil
}

// GetByID returns a copy of the stored node
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	r.mu.RLock()
	node, ok := r.nodes[id.String()]
	r.mu.RUnlock()

	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return copyNode(node)
}

// GetBySpaceID returns copies of the space's nodes in creation order
func (r *NodeRepository) GetBySpaceID(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.bySpace[spaceID.String()]
	nodes := make([]*entities.Node, 0, len(ids))
	for _, id := range ids {
		c, err := copyNode(r.nodes[id])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, c)
	}
	return nodes, nil
}

// Delete removes the node and drops it from its space's ordering
func (r *NodeRepository) Delete(ctx context.Context, node *entities.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := node.ID().String()
	if _, ok := r.nodes[id]; !ok {
		return nil
	}
	delete(r.nodes, id)

	spaceID := node.SpaceID().String()
	ids := r.bySpace[spaceID]
	for i, existing := range ids {
		if existing == id {
			r.bySpace[spaceID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// NoteRepository is an in-memory ports.NoteRepository
type NoteRepository struct {
	mu    sync.RWMutex
	notes map[string]*entities.Note
}

var _ ports.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates an empty note repository
func NewNoteRepository() *NoteRepository {
	return &NoteRepository{notes: make(map[string]*entities.Note)}
}

// Save stores a copy of the note
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note) error {
	c, err := copyNote(note)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[note.ID().String()] = c
	return nil
}

// GetByID returns a copy of the stored note
func (r *NoteRepository) GetByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error) {
	r.mu.RLock()
	note, ok := r.notes[id.String()]
	r.mu.RUnlock()

	if !ok {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	return copyNote(note)
}

// Exists reports whether the note is stored
func (r *NoteRepository) Exists(ctx context.Context, id valueobjects.NoteID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.notes[id.String()]
	return ok, nil
}

// Delete removes the note and reports how many were removed
func (r *NoteRepository) Delete(ctx context.Context, id valueobjects.NoteID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id.String()]; !ok {
		return 0, nil
	}
	delete(r.notes, id.String())
	return 1, nil
}

func copySpace(s *entities.Space) (*entities.Space, error) {
	return entities.ReconstructSpace(s.ID(), s.UserID(), s.Name(), s.ParentID(), s.HeadNodeID(), s.CreatedAt(), s.UpdatedAt())
}

func copyNode(n *entities.Node) (*entities.Node, error) {
	return entities.ReconstructNode(n.ID(), n.SpaceID(), n.Kind(), n.Position(), n.SourceID(), n.AnchorID(), n.Ref(), n.CreatedAt())
}

func copyNote(n *entities.Note) (*entities.Note, error) {
	return entities.ReconstructNote(n.ID(), n.UserID(), n.Name(), n.Content(), n.CreatedAt(), n.UpdatedAt())
}
