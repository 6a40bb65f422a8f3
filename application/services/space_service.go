package services

import (
	"context"
	"errors"

	"gooey-backend/application/ports"
	"gooey-backend/domain/config"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"

	"go.uber.org/zap"
)

// SpaceService manages the space hierarchy and the nodes on each canvas.
// It is the node creator behind canvas placements.
type SpaceService struct {
	spaces    ports.SpaceRepository
	nodes     ports.NodeRepository
	notes     *NoteService
	publisher ports.EventPublisher
	config    *config.DomainConfig
	logger    *zap.Logger
}

var _ ports.NodeCreator = (*SpaceService)(nil)

// NewSpaceService creates a new space service
func NewSpaceService(
	spaces ports.SpaceRepository,
	nodes ports.NodeRepository,
	notes *NoteService,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *SpaceService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SpaceService{
		spaces:    spaces,
		nodes:     nodes,
		notes:     notes,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// CreateSpace creates a space and its head node. A given parent must exist.
func (s *SpaceService) CreateSpace(
	ctx context.Context,
	id valueobjects.SpaceID,
	userID, name string,
	parentID *valueobjects.SpaceID,
) (*entities.Space, error) {
	space, head, err := s.createSpace(ctx, id, userID, name, parentID)
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, s.logger, space, head)
	return space, nil
}

// createSpace persists a space and its head node without publishing.
// When the head node cannot be saved the space record is removed again.
func (s *SpaceService) createSpace(
	ctx context.Context,
	id valueobjects.SpaceID,
	userID, name string,
	parentID *valueobjects.SpaceID,
) (*entities.Space, *entities.Node, error) {
	if parentID != nil {
		exists, err := s.spaces.Exists(ctx, *parentID)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			return nil, nil, pkgerrors.NewNotFoundError("parent space").WithCode(pkgerrors.CodeSpaceNotFound)
		}
	}

	space, head, err := entities.NewSpace(id, userID, name, parentID, s.config)
	if err != nil {
		return nil, nil, err
	}

	if err := s.spaces.Save(ctx, space); err != nil {
		return nil, nil, pkgerrors.NewDatabaseError("save space", err).WithCode(pkgerrors.CodeSpaceCreationFailed)
	}
	if err := s.nodes.Save(ctx, head); err != nil {
		s.rollback(ctx, "space", space.ID().String(), func(ctx context.Context) error {
			return s.spaces.Delete(ctx, space.ID())
		})
		return nil, nil, pkgerrors.NewDatabaseError("save head node", err).WithCode(pkgerrors.CodeSpaceCreationFailed)
	}

	s.logger.Info("Space created",
		zap.String("spaceID", space.ID().String()),
		zap.String("userID", userID),
		zap.Bool("root", space.IsRoot()),
	)
	return space, head, nil
}

// discardSpace removes a space created for a placement that did not commit
func (s *SpaceService) discardSpace(ctx context.Context, space *entities.Space, head *entities.Node) error {
	return errors.Join(
		s.nodes.Delete(ctx, head),
		s.spaces.Delete(ctx, space.ID()),
	)
}

// rollback undoes a partial write. It runs even when ctx is already cancelled.
func (s *SpaceService) rollback(ctx context.Context, kind, id string, undo func(context.Context) error) {
	if err := undo(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("Failed to roll back partial write",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}

// ExistsByID reports whether the space exists
func (s *SpaceService) ExistsByID(ctx context.Context, id valueobjects.SpaceID) (bool, error) {
	return s.spaces.Exists(ctx, id)
}

// GetSpace returns the space or a NotFound error
func (s *SpaceService) GetSpace(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	space, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNotFoundError("space").WithCode(pkgerrors.CodeSpaceNotFound)
		}
		return nil, err
	}
	return space, nil
}

// UpdateSpace guards on existence and renames the space when name is set
func (s *SpaceService) UpdateSpace(ctx context.Context, id valueobjects.SpaceID, name *string) (*entities.Space, error) {
	space, err := s.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return space, nil
	}

	if err := space.Rename(*name, s.config); err != nil {
		return nil, err
	}
	if err := s.spaces.Save(ctx, space); err != nil {
		return nil, pkgerrors.NewDatabaseError("save space", err)
	}
	return space, nil
}

// GetBreadcrumb returns the chain of spaces from the root down to id.
// A parent cycle or a chain deeper than the configured limit is cut off at that point.
func (s *SpaceService) GetBreadcrumb(ctx context.Context, id valueobjects.SpaceID) ([]*entities.Space, error) {
	current, err := s.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []*entities.Space{current}
	seen := map[string]struct{}{current.ID().String(): {}}

	for parentID := current.ParentID(); parentID != nil; parentID = current.ParentID() {
		if len(chain) >= s.config.MaxBreadcrumbDepth {
			s.logger.Warn("Breadcrumb depth limit reached", zap.String("spaceID", id.String()))
			break
		}
		if _, loop := seen[parentID.String()]; loop {
			s.logger.Warn("Space parent cycle detected", zap.String("spaceID", parentID.String()))
			break
		}

		parent, err := s.spaces.GetByID(ctx, *parentID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				// Orphaned branch: the chain starts at the highest surviving ancestor.
				break
			}
			return nil, err
		}

		seen[parent.ID().String()] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// ListNodes returns every node on the space's canvas
func (s *SpaceService) ListNodes(ctx context.Context, id valueobjects.SpaceID) ([]*entities.Node, error) {
	exists, err := s.spaces.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.NewNotFoundError("space").WithCode(pkgerrors.CodeSpaceNotFound)
	}
	return s.nodes.GetBySpaceID(ctx, id)
}

// GetNode returns a single node
func (s *SpaceService) GetNode(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	return s.nodes.GetByID(ctx, id)
}

// CreateNode materialises a placement draft. Note and subspace nodes get their
// backing note or child space created first and referenced from the node. If
// the node is not stored the backing record is removed and nothing is published.
func (s *SpaceService) CreateNode(ctx context.Context, draft entities.NodeDraft) (*entities.Node, error) {
	space, err := s.GetSpace(ctx, draft.SpaceID)
	if err != nil {
		return nil, err
	}

	var (
		backing []eventSource
		undo    = func() {}
	)
	switch draft.Kind {
	case entities.KindNote:
		note, err := s.notes.create(ctx, valueobjects.NewNoteID(), space.UserID(), s.config.DefaultNoteName)
		if err != nil {
			return nil, err
		}
		draft.Ref = note.ID().String()
		backing = append(backing, note)
		undo = func() {
			s.rollback(ctx, "note", note.ID().String(), func(ctx context.Context) error {
				return s.notes.discard(ctx, note.ID())
			})
		}
	case entities.KindSubspace:
		parentID := space.ID()
		child, head, err := s.createSpace(ctx, valueobjects.NewSpaceID(), space.UserID(), s.config.DefaultSpaceName, &parentID)
		if err != nil {
			return nil, err
		}
		draft.Ref = child.ID().String()
		backing = append(backing, child, head)
		undo = func() {
			s.rollback(ctx, "space", child.ID().String(), func(ctx context.Context) error {
				return s.discardSpace(ctx, child, head)
			})
		}
	}

	node, err := entities.NewNode(draft)
	if err != nil {
		undo()
		return nil, err
	}
	if err := s.nodes.Save(ctx, node); err != nil {
		undo()
		return nil, pkgerrors.NewDatabaseError("save node", err)
	}

	s.logger.Info("Node placed",
		zap.String("nodeID", node.ID().String()),
		zap.String("spaceID", space.ID().String()),
		zap.String("kind", node.Kind().String()),
	)
	publishEvents(ctx, s.publisher, s.logger, append(backing, node)...)

	return node, nil
}
