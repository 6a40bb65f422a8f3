package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gooey-backend/application/services"
	"gooey-backend/domain/config"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/domain/events"
	"gooey-backend/infrastructure/messaging"
	"gooey-backend/infrastructure/persistence/memory"
	"gooey-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCommitter struct{}

func (failingCommitter) Commit(context.Context, entities.NodeDraft) (*entities.Node, error) {
	return nil, errors.New("storage unavailable")
}

type canvasFixture struct {
	server *httptest.Server
	hub    *Hub
	space  *entities.Space
}

func newCanvasFixture(t *testing.T, committer func(*services.SpaceService) services.Committer) *canvasFixture {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.DefaultDomainConfig()
	metrics := observability.NewCollector("test")

	bus := messaging.NewLocalBus(logger)
	hub := NewHub(metrics, logger)
	bus.Subscribe(events.TypeNodePlaced, hub.HandleEvent)

	notes := services.NewNoteService(memory.NewNoteRepository(), bus, cfg, logger)
	spaces := services.NewSpaceService(memory.NewSpaceRepository(), memory.NewNodeRepository(), notes, bus, cfg, logger)

	space, err := spaces.CreateSpace(context.Background(), valueobjects.NewSpaceID(), config.GuestUserID, "Home", nil)
	require.NoError(t, err)

	settings := Settings{MaxMessageBytes: 4096, PingInterval: time.Second, AllowedOrigins: []string{"*"}}
	srv := NewServer(hub, spaces, committer(spaces), settings, metrics, logger)

	router := chi.NewRouter()
	router.Handle("/api/v1/space/{id}/canvas", srv)
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})

	return &canvasFixture{server: ts, hub: hub, space: space}
}

func realCommitter(spaces *services.SpaceService) services.Committer {
	return services.NewPlacementCommitter(spaces, nil, nil, zap.NewNop())
}

func (f *canvasFixture) dial(t *testing.T, spaceID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/space/" + spaceID + "/canvas"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	readType(t, conn, TypeConnected)
	readType(t, conn, TypeSession)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg InboundMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readType skips messages until one of the given type arrives
func readType(t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg.Data
		}
	}
}

func readSession(t *testing.T, conn *websocket.Conn) SessionData {
	t.Helper()
	var data SessionData
	require.NoError(t, json.Unmarshal(readType(t, conn, TypeSession), &data))
	return data
}

func float(v float64) *float64 { return &v }

func TestCanvas_PlacementIsBroadcast(t *testing.T) {
	f := newCanvasFixture(t, realCommitter)
	spaceID := f.space.ID().String()
	head := f.space.HeadNodeID().String()

	origin := f.dial(t, spaceID)
	viewer := f.dial(t, spaceID)
	assert.Eventually(t, func() bool { return f.hub.ConnectionCount(spaceID) == 2 }, time.Second, 10*time.Millisecond)

	send(t, origin, InboundMessage{Type: TypeDragStart, NodeID: head})
	session := readSession(t, origin)
	assert.Equal(t, "dragging", session.Phase)
	assert.Equal(t, head, session.StartNodeID)

	send(t, origin, InboundMessage{Type: TypeDragMove, X: float(400), Y: float(250)})
	session = readSession(t, origin)
	require.NotNil(t, session.Position)
	assert.Equal(t, PointData{X: 400, Y: 250}, *session.Position)

	// a move without coordinates keeps the last position
	send(t, origin, InboundMessage{Type: TypeDragMove, X: float(1)})
	session = readSession(t, origin)
	assert.Equal(t, PointData{X: 400, Y: 250}, *session.Position)

	send(t, origin, InboundMessage{Type: TypeDragEnd})
	session = readSession(t, origin)
	assert.Equal(t, "awaiting_disambiguation", session.Phase)
	require.NotNil(t, session.DropPosition)

	send(t, origin, InboundMessage{Type: TypePaletteSelect, Kind: "note"})
	session = readSession(t, origin)
	assert.Equal(t, "idle", session.Phase)
	assert.Empty(t, session.StartNodeID)

	for _, conn := range []*websocket.Conn{origin, viewer} {
		var placed struct {
			SpaceID  string  `json:"spaceId"`
			Kind     string  `json:"kind"`
			X        float64 `json:"x"`
			Y        float64 `json:"y"`
			SourceID string  `json:"sourceId"`
			Ref      string  `json:"ref"`
		}
		require.NoError(t, json.Unmarshal(readType(t, conn, TypeNodePlaced), &placed))
		assert.Equal(t, spaceID, placed.SpaceID)
		assert.Equal(t, "note", placed.Kind)
		assert.Equal(t, 400.0, placed.X)
		assert.Equal(t, 250.0, placed.Y)
		assert.Equal(t, head, placed.SourceID)
		assert.NotEmpty(t, placed.Ref)
	}
}

func TestCanvas_CloseCancelsPlacement(t *testing.T) {
	f := newCanvasFixture(t, realCommitter)
	conn := f.dial(t, f.space.ID().String())

	send(t, conn, InboundMessage{Type: TypeDragStart, NodeID: f.space.HeadNodeID().String()})
	readSession(t, conn)
	send(t, conn, InboundMessage{Type: TypeDragMove, X: float(10), Y: float(10)})
	readSession(t, conn)
	send(t, conn, InboundMessage{Type: TypeDragEnd})
	readSession(t, conn)

	send(t, conn, InboundMessage{Type: TypePaletteSelect, Kind: "close"})
	session := readSession(t, conn)
	assert.Equal(t, "idle", session.Phase)
	assert.Nil(t, session.DropPosition)
}

func TestCanvas_CommitFailureReachesOrigin(t *testing.T) {
	f := newCanvasFixture(t, func(*services.SpaceService) services.Committer { return failingCommitter{} })
	conn := f.dial(t, f.space.ID().String())

	send(t, conn, InboundMessage{Type: TypeDragStart, NodeID: f.space.HeadNodeID().String()})
	send(t, conn, InboundMessage{Type: TypeDragMove, X: float(50), Y: float(60)})
	send(t, conn, InboundMessage{Type: TypeDragEnd})
	send(t, conn, InboundMessage{Type: TypePaletteSelect, Kind: "url"})

	var failed CommitFailedData
	require.NoError(t, json.Unmarshal(readType(t, conn, TypeCommitFailed), &failed))
	assert.Equal(t, "url", failed.Kind)
	assert.Equal(t, f.space.HeadNodeID().String(), failed.SourceID)
}

func TestCanvas_RejectsBadInput(t *testing.T) {
	f := newCanvasFixture(t, realCommitter)
	conn := f.dial(t, f.space.ID().String())

	tests := []struct {
		name string
		msg  InboundMessage
	}{
		{"unknown type", InboundMessage{Type: "teleport"}},
		{"malformed node id", InboundMessage{Type: TypeDragStart, NodeID: "nope"}},
		{"node from elsewhere", InboundMessage{Type: TypeDragStart, NodeID: valueobjects.NewNodeID().String()}},
		{"unknown kind", InboundMessage{Type: TypePaletteSelect, Kind: "video"}},
		{"head kind", InboundMessage{Type: TypePaletteSelect, Kind: "head"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msg)
			var data ErrorData
			require.NoError(t, json.Unmarshal(readType(t, conn, TypeError), &data))
			assert.NotEmpty(t, data.Message)
		})
	}
}

func TestCanvas_UnknownSpace(t *testing.T) {
	f := newCanvasFixture(t, realCommitter)

	for _, id := range []string{valueobjects.NewSpaceID().String(), "not-a-uuid"} {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/space/" + id + "/canvas"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	f := newCanvasFixture(t, realCommitter)
	spaceID := f.space.ID().String()

	conn := f.dial(t, spaceID)
	assert.Eventually(t, func() bool { return f.hub.ConnectionCount(spaceID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.hub.ConnectionCount(spaceID) == 0 }, 2*time.Second, 10*time.Millisecond)

	// events for spaces nobody watches are dropped quietly
	f.hub.HandleEvent(context.Background(), events.NewNoteDeleted(valueobjects.NewNoteID(), time.Now()))
	assert.NoError(t, f.hub.Broadcast(spaceID, TypeNodePlaced, map[string]string{}))
}
