package services

import (
	"context"

	"gooey-backend/domain/canvas"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	"gooey-backend/pkg/observability"

	"go.uber.org/zap"
)

// Committer creates the node a placement draft describes
type Committer interface {
	Commit(ctx context.Context, draft entities.NodeDraft) (*entities.Node, error)
}

// Dispatcher runs a commit. The canvas never waits on it.
type Dispatcher func(fn func())

// GoDispatcher runs each commit on its own goroutine
func GoDispatcher(fn func()) { go fn() }

// SyncDispatcher runs the commit inline, for tests and batch tools
func SyncDispatcher(fn func()) { fn() }

// CommitResult reports the outcome of one dispatched placement
type CommitResult struct {
	Draft entities.NodeDraft
	Node  *entities.Node
	Err   error
}

// CanvasView owns the drag session of a single canvas view. It is not safe for
// concurrent use; callers serialize events, as one websocket read loop does.
type CanvasView struct {
	session   canvas.Session
	committer Committer
	dispatch  Dispatcher
	onCommit  func(CommitResult)
	metrics   *observability.Collector
	logger    *zap.Logger
}

// CanvasViewOption configures a CanvasView
type CanvasViewOption func(*CanvasView)

// WithDispatcher overrides how commits are run
func WithDispatcher(d Dispatcher) CanvasViewOption {
	return func(v *CanvasView) { v.dispatch = d }
}

// WithCommitHandler receives every commit outcome
func WithCommitHandler(fn func(CommitResult)) CanvasViewOption {
	return func(v *CanvasView) { v.onCommit = fn }
}

// WithMetrics counts cancelled placements
func WithMetrics(m *observability.Collector) CanvasViewOption {
	return func(v *CanvasView) { v.metrics = m }
}

// NewCanvasView creates an idle canvas view
func NewCanvasView(committer Committer, logger *zap.Logger, opts ...CanvasViewOption) *CanvasView {
	v := &CanvasView{
		committer: committer,
		dispatch:  GoDispatcher,
		onCommit:  func(CommitResult) {},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsActive reports whether a drag is in progress
func (v *CanvasView) IsActive() bool {
	return v.session.IsDragging()
}

// StartNode is the node being dragged from, kept until the palette resolves
func (v *CanvasView) StartNode() *entities.Node {
	return v.session.StartNode()
}

// Position is the live drag position, nil when not dragging
func (v *CanvasView) Position() *valueobjects.Position {
	return v.session.DragPosition()
}

// DropPosition is where the pointer was released, nil unless the palette is open
func (v *CanvasView) DropPosition() *valueobjects.Position {
	return v.session.DropPosition()
}

// Phase returns the current session phase
func (v *CanvasView) Phase() canvas.Phase {
	return v.session.Phase()
}

// Session returns a copy of the session state
func (v *CanvasView) Session() canvas.Session {
	return v.session
}

func (v *CanvasView) OnDragStart(node *entities.Node) {
	v.session, _ = v.session.Apply(canvas.DragStarted{Node: node})
}

// OnDragMove takes a position already in canvas coordinates; nil is ignored
func (v *CanvasView) OnDragMove(pos *valueobjects.Position) {
	v.session, _ = v.session.Apply(canvas.DragMoved{Position: pos})
}

func (v *CanvasView) OnDragEnd() {
	v.session, _ = v.session.Apply(canvas.DragEnded{})
}

// HandlePaletteSelect resolves a pending drop. nodes is the current node set of
// the space and is read before this call returns. The session is idle again
// before the commit is dispatched, and the commit outlives ctx cancellation.
// It reports whether a commit was dispatched.
func (v *CanvasView) HandlePaletteSelect(ctx context.Context, kind entities.NodeKind, nodes []*entities.Node) bool {
	var req *canvas.PlacementRequest
	v.session, req = v.session.Apply(canvas.PaletteSelected{Kind: kind})
	if req == nil {
		if kind == entities.KindClose {
			v.metrics.RecordPlacement(kind.String(), "cancelled")
		}
		return false
	}

	draft := Plan(*req, nodes)
	commitCtx := context.WithoutCancel(ctx)

	v.dispatch(func() {
		node, err := v.committer.Commit(commitCtx, draft)
		if err != nil {
			v.logger.Debug("Canvas placement not committed", zap.Error(err))
		}
		v.onCommit(CommitResult{Draft: draft, Node: node, Err: err})
	})
	return true
}
