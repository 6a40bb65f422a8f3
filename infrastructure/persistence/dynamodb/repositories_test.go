package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"gooey-backend/domain/config"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
	pkgerrors "gooey-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTable = "gooey-test"

func TestSpaceRepository(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	repo := NewSpaceRepository(client, testTable, zap.NewNop())
	cfg := config.DefaultDomainConfig()

	root, _, err := entities.NewSpace(valueobjects.NewSpaceID(), config.GuestUserID, "Home", nil, cfg)
	require.NoError(t, err)
	rootID := root.ID()
	child, _, err := entities.NewSpace(valueobjects.NewSpaceID(), config.GuestUserID, "Work", &rootID, cfg)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, root))
	require.NoError(t, repo.Save(ctx, child))

	got, err := repo.GetByID(ctx, child.ID())
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Name())
	require.NotNil(t, got.ParentID())
	assert.True(t, got.ParentID().Equals(rootID))
	assert.True(t, got.HeadNodeID().Equals(child.HeadNodeID()))
	assert.WithinDuration(t, child.CreatedAt(), got.CreatedAt(), time.Millisecond)

	exists, err := repo.Exists(ctx, root.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, valueobjects.NewSpaceID())
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.GetByID(ctx, valueobjects.NewSpaceID())
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, repo.Delete(ctx, child.ID()))
	exists, err = repo.Exists(ctx, child.ID())
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, repo.Delete(ctx, child.ID()))
}

func TestNodeRepository(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	repo := NewNodeRepository(client, testTable, "GSI1", zap.NewNop())

	spaceID := valueobjects.NewSpaceID()
	head, err := entities.ReconstructNode(valueobjects.NewNodeID(), spaceID, entities.KindHead,
		valueobjects.Origin(), nil, nil, "", time.Unix(100, 0))
	require.NoError(t, err)

	headID := head.ID()
	note, err := entities.ReconstructNode(valueobjects.NewNodeID(), spaceID, entities.KindNote,
		valueobjects.MustPosition(40, -12.5), &headID, &headID, valueobjects.NewNoteID().String(), time.Unix(200, 0))
	require.NoError(t, err)

	// Saved out of order; listing follows creation time.
	require.NoError(t, repo.Save(ctx, note))
	require.NoError(t, repo.Save(ctx, head))

	t.Run("create only", func(t *testing.T) {
		err := repo.Save(ctx, head)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict))
	})

	t.Run("list in creation order", func(t *testing.T) {
		nodes, err := repo.GetBySpaceID(ctx, spaceID)
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.True(t, nodes[0].ID().Equals(head.ID()))
		assert.True(t, nodes[1].ID().Equals(note.ID()))
	})

	t.Run("get by id through the index", func(t *testing.T) {
		got, err := repo.GetByID(ctx, note.ID())
		require.NoError(t, err)
		assert.Equal(t, entities.KindNote, got.Kind())
		assert.True(t, got.Position().Equals(valueobjects.MustPosition(40, -12.5)))
		require.NotNil(t, got.AnchorID())
		assert.True(t, got.AnchorID().Equals(headID))
		assert.Equal(t, note.Ref(), got.Ref())
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := repo.GetByID(ctx, valueobjects.NewNodeID())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("empty space", func(t *testing.T) {
		nodes, err := repo.GetBySpaceID(ctx, valueobjects.NewSpaceID())
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, note))

		nodes, err := repo.GetBySpaceID(ctx, spaceID)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.True(t, nodes[0].ID().Equals(head.ID()))

		_, err = repo.GetByID(ctx, note.ID())
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestNoteRepository(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	repo := NewNoteRepository(client, testTable, zap.NewNop())
	cfg := config.DefaultDomainConfig()

	note, err := entities.NewNote(valueobjects.NewNoteID(), config.GuestUserID, "", cfg)
	require.NoError(t, err)
	require.NoError(t, note.ReplaceContent("# heading", cfg))
	require.NoError(t, repo.Save(ctx, note))

	got, err := repo.GetByID(ctx, note.ID())
	require.NoError(t, err)
	assert.Equal(t, "# heading", got.Content())
	assert.Equal(t, cfg.DefaultNoteName, got.Name())

	deleted, err := repo.Delete(ctx, note.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, err = repo.Delete(ctx, note.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	exists, err := repo.Exists(ctx, note.ID())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositories_ClientFailure(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.err = errors.New("throttled")

	_, err := NewNoteRepository(client, testTable, zap.NewNop()).GetByID(ctx, valueobjects.NewNoteID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))

	_, err = NewSpaceRepository(client, testTable, zap.NewNop()).Exists(ctx, valueobjects.NewSpaceID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestEventLog(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	log := NewEventLog(client, testTable, 24*time.Hour, zap.NewNop())

	noteID := valueobjects.NewNoteID()
	base := time.Unix(1_700_000_000, 0)

	batch := make([]events.DomainEvent, 0, 30)
	batch = append(batch, events.NewNoteCreated(noteID, config.GuestUserID, base))
	for i := 1; i < 30; i++ {
		batch = append(batch, events.NewNoteContentUpdated(noteID, i, base.Add(time.Duration(i)*time.Second)))
	}

	require.NoError(t, log.PublishBatch(ctx, batch))
	// 30 events need two batch writes
	assert.Equal(t, 2, client.calls)

	records, err := log.Events(ctx, noteID.String())
	require.NoError(t, err)
	require.Len(t, records, 30)
	assert.Equal(t, events.TypeNoteCreated, records[0].EventType)
	assert.Equal(t, events.TypeNoteContentUpdated, records[29].EventType)
	assert.Equal(t, base.Add(24*time.Hour).Unix(), records[0].TTL)
	assert.Contains(t, records[0].Payload, noteID.String())
}
