package websocket

import (
	"context"
	"sync"

	"gooey-backend/application/queries"
	"gooey-backend/domain/events"
	"gooey-backend/pkg/observability"

	"go.uber.org/zap"
)

// Hub tracks the canvas connections of every space and fans placements out to them
type Hub struct {
	spaces  map[string]map[*Client]struct{} // spaceID -> connected clients
	mu      sync.RWMutex
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewHub creates an empty hub
func NewHub(metrics *observability.Collector, logger *zap.Logger) *Hub {
	return &Hub{
		spaces:  make(map[string]map[*Client]struct{}),
		metrics: metrics,
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.spaces[c.spaceID] == nil {
		h.spaces[c.spaceID] = make(map[*Client]struct{})
	}
	h.spaces[c.spaceID][c] = struct{}{}
	h.metrics.SessionOpened()

	h.logger.Info("Canvas client registered",
		zap.String("spaceID", c.spaceID),
		zap.String("connectionID", c.id),
		zap.Int("spaceConnections", len(h.spaces[c.spaceID])),
	)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.spaces[c.spaceID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(h.spaces, c.spaceID)
	}
	c.close()
	h.metrics.SessionClosed()

	h.logger.Info("Canvas client unregistered",
		zap.String("spaceID", c.spaceID),
		zap.String("connectionID", c.id),
		zap.Int("remainingConnections", len(clients)),
	)
}

// ConnectionCount returns the number of clients viewing a space
func (h *Hub) ConnectionCount(spaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.spaces[spaceID])
}

// Broadcast sends a message to every client viewing a space. Clients whose
// buffer is full miss the message.
func (h *Hub) Broadcast(spaceID, msgType string, data interface{}) error {
	payload, err := encode(msgType, data)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.spaces[spaceID] {
		if !c.enqueue(payload) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("Canvas broadcast dropped for slow clients",
			zap.String("spaceID", spaceID),
			zap.String("messageType", msgType),
			zap.Int("dropped", dropped),
		)
	}
	return nil
}

// HandleEvent forwards node placements to the viewers of the node's space.
// It is subscribed to the in-process event bus.
func (h *Hub) HandleEvent(_ context.Context, event events.DomainEvent) {
	var placed events.NodePlaced
	switch e := event.(type) {
	case events.NodePlaced:
		placed = e
	case *events.NodePlaced:
		placed = *e
	default:
		return
	}

	view := queries.NewPlacedNodeView(placed)
	if err := h.Broadcast(view.SpaceID, TypeNodePlaced, view); err != nil {
		h.logger.Error("Failed to broadcast placement", zap.Error(err), zap.String("nodeID", view.ID))
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for spaceID, clients := range h.spaces {
		for c := range clients {
			c.close()
			h.metrics.SessionClosed()
		}
		delete(h.spaces, spaceID)
	}
	h.logger.Info("Canvas hub closed")
}
