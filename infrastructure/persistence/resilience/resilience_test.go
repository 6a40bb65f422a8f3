package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gooey-backend/domain/config"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/infrastructure/persistence/memory"
	pkgerrors "gooey-backend/pkg/errors"
	"gooey-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingNodes struct {
	*memory.NodeRepository
	err error
}

func (f *failingNodes) Save(ctx context.Context, node *entities.Node) error {
	if f.err != nil {
		return f.err
	}
	return f.NodeRepository.Save(ctx, node)
}

func headNode(t *testing.T) *entities.Node {
	t.Helper()
	node, err := entities.ReconstructNode(valueobjects.NewNodeID(), valueobjects.NewSpaceID(),
		entities.KindHead, valueobjects.Origin(), nil, nil, "", time.Now())
	require.NoError(t, err)
	return node
}

func TestBreakerNodeRepository_TripsAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	inner := &failingNodes{NodeRepository: memory.NewNodeRepository(), err: errors.New("store down")}

	cfg := DefaultBreakerConfig("nodes")
	cfg.MaxFailures = 3
	repo := NewBreakerNodeRepository(inner, cfg, observability.NewCollector("test"), zap.NewNop())

	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, headNode(t))
		require.Error(t, err)
		assert.False(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, repo.State())

	// Open breaker fails fast even after the store recovers.
	inner.err = nil
	err := repo.Save(ctx, headNode(t))
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
}

func TestBreakerNodeRepository_NotFoundDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultBreakerConfig("nodes")
	cfg.MaxFailures = 1
	repo := NewBreakerNodeRepository(memory.NewNodeRepository(), cfg, nil, zap.NewNop())

	_, err := repo.GetByID(ctx, valueobjects.NewNodeID())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, gobreaker.StateClosed, repo.State())

	node := headNode(t)
	require.NoError(t, repo.Save(ctx, node))

	nodes, err := repo.GetBySpaceID(ctx, node.SpaceID())
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

type slowSpaces struct {
	*memory.SpaceRepository
	calls   atomic.Int32
	release chan struct{}
}

func (s *slowSpaces) GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	s.calls.Add(1)
	<-s.release
	return s.SpaceRepository.GetByID(ctx, id)
}

func TestCoalescingSpaceRepository(t *testing.T) {
	ctx := context.Background()
	inner := &slowSpaces{SpaceRepository: memory.NewSpaceRepository(), release: make(chan struct{})}
	repo := NewCoalescingSpaceRepository(inner)

	space, _, err := entities.NewSpace(valueobjects.NewSpaceID(), config.GuestUserID, "Home", nil, config.DefaultDomainConfig())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, space))

	const readers = 8
	results := make([]*entities.Space, readers)
	var started, done sync.WaitGroup
	started.Add(readers)
	done.Add(readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			got, err := repo.GetByID(ctx, space.ID())
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	started.Wait()
	// Let the readers pile up on the in-flight call before it returns.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	done.Wait()

	assert.Less(t, inner.calls.Load(), int32(readers))
	for i := 1; i < readers; i++ {
		require.NotNil(t, results[i])
		assert.NotSame(t, results[0], results[i])
		assert.Equal(t, "Home", results[i].Name())
	}

	exists, err := repo.Exists(ctx, space.ID())
	require.NoError(t, err)
	assert.True(t, exists)
}
