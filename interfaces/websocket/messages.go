package websocket

import (
	"encoding/json"
	"time"

	"gooey-backend/domain/canvas"
)

// Inbound message types
const (
	TypeDragStart     = "drag_start"
	TypeDragMove      = "drag_move"
	TypeDragEnd       = "drag_end"
	TypePaletteSelect = "palette_select"
)

// Outbound message types
const (
	TypeConnected    = "connected"
	TypeSession      = "session"
	TypeNodePlaced   = "node_placed"
	TypeCommitFailed = "commit_failed"
	TypeError        = "error"
)

// InboundMessage is a canvas interaction sent by the client. X and Y are
// canvas coordinates; a drag_move missing either one is ignored.
type InboundMessage struct {
	Type   string   `json:"type"`
	NodeID string   `json:"nodeId,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Kind   string   `json:"kind,omitempty"`
}

// Message is the envelope of everything sent to a client
type Message struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ConnectedData is sent once after the upgrade
type ConnectedData struct {
	ConnectionID string `json:"connectionId"`
	SpaceID      string `json:"spaceId"`
	UserID       string `json:"userId"`
}

// PointData is a canvas position on the wire
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SessionData mirrors the drag session after every inbound event
type SessionData struct {
	Phase        string     `json:"phase"`
	StartNodeID  string     `json:"startNodeId,omitempty"`
	Position     *PointData `json:"position,omitempty"`
	DropPosition *PointData `json:"dropPosition,omitempty"`
}

// CommitFailedData tells the origin view its placement was not created
type CommitFailedData struct {
	Kind     string `json:"kind"`
	SourceID string `json:"sourceId,omitempty"`
	Message  string `json:"message"`
}

// ErrorData reports a rejected inbound message
type ErrorData struct {
	Message string `json:"message"`
}

func encode(msgType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	})
}

func newSessionData(s canvas.Session) SessionData {
	data := SessionData{Phase: s.Phase().String()}
	if n := s.StartNode(); n != nil {
		data.StartNodeID = n.ID().String()
	}
	if p := s.DragPosition(); p != nil {
		data.Position = &PointData{X: p.X(), Y: p.Y()}
	}
	if p := s.DropPosition(); p != nil {
		data.DropPosition = &PointData{X: p.X(), Y: p.Y()}
	}
	return data
}
