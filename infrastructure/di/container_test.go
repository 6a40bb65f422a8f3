package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gooey-backend/domain/config"
	infraconfig "gooey-backend/infrastructure/config"
	"gooey-backend/interfaces/websocket"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := infraconfig.Default()
	cfg.LogLevel = "error"
	cfg.Environment = "test"

	container, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })
	return container
}

func TestInitializeContainer_RejectsBadLevel(t *testing.T) {
	cfg := infraconfig.Default()
	cfg.LogLevel = "chatty"

	_, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestContainer_EndToEnd(t *testing.T) {
	c := newTestContainer(t)
	ts := httptest.NewServer(c.Router.Setup())
	defer ts.Close()

	body := `{"userId":"` + config.GuestUserID + `","spaceName":"Home"}`
	resp, err := http.Post(ts.URL+"/api/v2/space", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		URLPath string `json:"urlPath"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	nodesResp, err := http.Get(ts.URL + "/api/v1/space/" + created.URLPath + "/nodes")
	require.NoError(t, err)
	defer nodesResp.Body.Close()

	var listed struct {
		Nodes []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(nodesResp.Body).Decode(&listed))
	require.Len(t, listed.Nodes, 1)
	head := listed.Nodes[0].ID

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/space/" + created.URLPath + "/canvas"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, msg := range []websocket.InboundMessage{
		{Type: websocket.TypeDragStart, NodeID: head},
		{Type: websocket.TypeDragMove, X: ptr(500.0), Y: ptr(500.0)},
		{Type: websocket.TypeDragEnd},
		{Type: websocket.TypePaletteSelect, Kind: "subspace"},
	} {
		require.NoError(t, conn.WriteJSON(msg))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg websocket.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == websocket.TypeNodePlaced {
			assert.Contains(t, string(msg.Data), `"kind":"subspace"`)
			break
		}
	}

	assert.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/v1/space/" + created.URLPath + "/nodes")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var result struct {
			Nodes []json.RawMessage `json:"nodes"`
		}
		return json.NewDecoder(resp.Body).Decode(&result) == nil && len(result.Nodes) == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func ptr(v float64) *float64 { return &v }
