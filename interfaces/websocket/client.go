package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gooey-backend/application/services"
	"gooey-backend/domain/canvas"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Send buffer size
	sendBufferSize = 64
)

// Client is one canvas view connected over a websocket. Inbound events are
// handled in order on the read loop, which owns the view's drag session.
type Client struct {
	id       string
	spaceID  string
	space    valueobjects.SpaceID
	userID   string
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	view     *services.CanvasView
	canvas   Canvas
	settings Settings
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(
	space valueobjects.SpaceID,
	userID string,
	hub *Hub,
	conn *websocket.Conn,
	canvasSource Canvas,
	settings Settings,
	logger *zap.Logger,
) *Client {
	id := uuid.New().String()
	return &Client{
		id:       id,
		spaceID:  space.String(),
		space:    space,
		userID:   userID,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		canvas:   canvasSource,
		settings: settings,
		logger: logger.With(
			zap.String("connectionID", id),
			zap.String("spaceID", space.String()),
		),
	}
}

// enqueue hands a payload to the write loop without blocking
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) sendMessage(msgType string, data interface{}) {
	payload, err := encode(msgType, data)
	if err != nil {
		c.logger.Error("Failed to encode message", zap.Error(err), zap.String("messageType", msgType))
		return
	}
	if !c.enqueue(payload) {
		c.logger.Debug("Message dropped", zap.String("messageType", msgType))
	}
}

func (c *Client) sendError(message string) {
	c.sendMessage(TypeError, ErrorData{Message: message})
}

// onCommit runs on the commit goroutine once a placement resolves.
// Successful placements reach every viewer through the hub instead.
func (c *Client) onCommit(result services.CommitResult) {
	if result.Err == nil {
		return
	}

	data := CommitFailedData{
		Kind:    result.Draft.Kind.String(),
		Message: "placement could not be saved",
	}
	if result.Draft.SourceID != nil {
		data.SourceID = result.Draft.SourceID.String()
	}
	c.sendMessage(TypeCommitFailed, data)
}

// readPump handles inbound events until the peer goes away
func (c *Client) readPump(ctx context.Context) {
	pongWait := c.settings.PingInterval * 10 / 9

	c.conn.SetReadLimit(c.settings.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Canvas read error", zap.Error(err))
			}
			return
		}

		if messageType != websocket.TextMessage {
			c.sendError("binary messages are not supported")
			continue
		}
		c.handleMessage(ctx, data)
	}
}

// writePump writes queued messages and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(c.settings.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("malformed message")
		return
	}

	switch msg.Type {
	case TypeDragStart:
		if !c.dragStart(ctx, msg.NodeID) {
			return
		}
	case TypeDragMove:
		c.view.OnDragMove(movePosition(msg))
	case TypeDragEnd:
		c.view.OnDragEnd()
	case TypePaletteSelect:
		if !c.paletteSelect(ctx, msg.Kind) {
			return
		}
	default:
		c.sendError("unknown message type " + msg.Type)
		return
	}

	c.sendMessage(TypeSession, newSessionData(c.view.Session()))
}

func (c *Client) dragStart(ctx context.Context, rawID string) bool {
	nodeID, err := valueobjects.NodeIDFromString(rawID)
	if err != nil {
		c.sendError("invalid node id")
		return false
	}

	node, err := c.canvas.GetNode(ctx, nodeID)
	if err != nil || !node.SpaceID().Equals(c.space) {
		c.sendError("node is not on this canvas")
		return false
	}

	c.view.OnDragStart(node)
	return true
}

func (c *Client) paletteSelect(ctx context.Context, rawKind string) bool {
	kind, err := entities.ParsePaletteKind(rawKind)
	if err != nil {
		c.sendError(err.Error())
		return false
	}

	var nodes []*entities.Node
	if c.view.Phase() == canvas.PhaseAwaitingDisambiguation && kind != entities.KindClose {
		nodes, err = c.canvas.ListNodes(ctx, c.space)
		if err != nil {
			c.logger.Warn("Failed to load canvas nodes", zap.Error(err))
			c.sendError("canvas could not be loaded")
			return false
		}
	}

	c.view.HandlePaletteSelect(ctx, kind, nodes)
	return true
}

// movePosition converts the wire coordinates; anything unusable becomes nil
func movePosition(msg InboundMessage) *valueobjects.Position {
	if msg.X == nil || msg.Y == nil {
		return nil
	}
	pos, err := valueobjects.NewPosition(*msg.X, *msg.Y)
	if err != nil {
		return nil
	}
	return &pos
}
