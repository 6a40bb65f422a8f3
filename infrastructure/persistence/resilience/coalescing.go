package resilience

import (
	"context"

	"gooey-backend/application/ports"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"

	"golang.org/x/sync/singleflight"
)

// CoalescingSpaceRepository collapses concurrent reads of the same space into
// one store call. Breadcrumb walks and canvas connections on a busy space hit
// the same ancestors at once.
type CoalescingSpaceRepository struct {
	next   ports.SpaceRepository
	gets   singleflight.Group
	exists singleflight.Group
}

var _ ports.SpaceRepository = (*CoalescingSpaceRepository)(nil)

// NewCoalescingSpaceRepository wraps next
func NewCoalescingSpaceRepository(next ports.SpaceRepository) *CoalescingSpaceRepository {
	return &CoalescingSpaceRepository{next: next}
}

// Save writes through and drops any in-flight read of the space
func (r *CoalescingSpaceRepository) Save(ctx context.Context, space *entities.Space) error {
	err := r.next.Save(ctx, space)
	r.gets.Forget(space.ID().String())
	r.exists.Forget(space.ID().String())
	return err
}

// GetByID returns a private copy of the space for every caller
func (r *CoalescingSpaceRepository) GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	v, err, _ := r.gets.Do(id.String(), func() (interface{}, error) {
		return r.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return cloneSpace(v.(*entities.Space))
}

// Exists reports whether the space is stored
func (r *CoalescingSpaceRepository) Exists(ctx context.Context, id valueobjects.SpaceID) (bool, error) {
	v, err, _ := r.exists.Do(id.String(), func() (interface{}, error) {
		return r.next.Exists(ctx, id)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Delete writes through and drops any in-flight read of the space
func (r *CoalescingSpaceRepository) Delete(ctx context.Context, id valueobjects.SpaceID) error {
	err := r.next.Delete(ctx, id)
	r.gets.Forget(id.String())
	r.exists.Forget(id.String())
	return err
}

func cloneSpace(s *entities.Space) (*entities.Space, error) {
	return entities.ReconstructSpace(s.ID(), s.UserID(), s.Name(), s.ParentID(), s.HeadNodeID(), s.CreatedAt(), s.UpdatedAt())
}
