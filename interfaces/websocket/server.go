package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gooey-backend/application/services"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/infrastructure/config"
	"gooey-backend/pkg/auth"
	"gooey-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Canvas is the read side a canvas connection needs
type Canvas interface {
	ExistsByID(ctx context.Context, id valueobjects.SpaceID) (bool, error)
	GetNode(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)
	ListNodes(ctx context.Context, id valueobjects.SpaceID) ([]*entities.Node, error)
}

// Settings holds the connection limits
type Settings struct {
	MaxMessageBytes int64
	PingInterval    time.Duration
	AllowedOrigins  []string
}

// SettingsFromConfig reads the websocket settings, filling in defaults
func SettingsFromConfig(cfg *config.Config) Settings {
	s := Settings{
		MaxMessageBytes: cfg.WSMaxMessageBytes,
		PingInterval:    cfg.WSPingInterval,
		AllowedOrigins:  cfg.AllowedOrigins,
	}
	if s.MaxMessageBytes <= 0 {
		s.MaxMessageBytes = 4096
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	return s
}

// Server upgrades canvas requests and runs one CanvasView per connection
type Server struct {
	hub       *Hub
	canvas    Canvas
	committer services.Committer
	upgrader  websocket.Upgrader
	settings  Settings
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewServer creates the canvas websocket endpoint
func NewServer(
	hub *Hub,
	canvasSource Canvas,
	committer services.Committer,
	settings Settings,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Server {
	s := &Server{
		hub:       hub,
		canvas:    canvasSource,
		committer: committer,
		settings:  settings,
		metrics:   metrics,
		logger:    logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// ServeHTTP handles GET /api/v1/space/{id}/canvas
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	space, err := valueobjects.SpaceIDFromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "space not found", http.StatusNotFound)
		return
	}

	exists, err := s.canvas.ExistsByID(r.Context(), space)
	if err != nil {
		s.logger.Error("Canvas space lookup failed", zap.Error(err))
		http.Error(w, "space lookup failed", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "space not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade canvas connection",
			zap.Error(err),
			zap.String("remoteAddr", r.RemoteAddr),
		)
		return
	}

	identity := auth.FromContext(r.Context())
	client := newClient(space, identity.UserID, s.hub, conn, s.canvas, s.settings, s.logger)
	client.view = services.NewCanvasView(s.committer, client.logger,
		services.WithCommitHandler(client.onCommit),
		services.WithMetrics(s.metrics),
	)

	s.hub.register(client)
	defer s.hub.unregister(client)

	go client.writePump()
	client.sendMessage(TypeConnected, ConnectedData{
		ConnectionID: client.id,
		SpaceID:      client.spaceID,
		UserID:       identity.UserID,
	})
	client.sendMessage(TypeSession, newSessionData(client.view.Session()))

	client.readPump(r.Context())
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.settings.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Warn("Canvas origin rejected", zap.String("origin", origin))
	return false
}
