package services

import (
	"context"
	"time"

	"gooey-backend/application/ports"
	"gooey-backend/domain/canvas"
	"gooey-backend/domain/core/entities"
	pkgerrors "gooey-backend/pkg/errors"
	"gooey-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Plan decides what a placement creates and where. It reads nodes and never mutates them.
//
// A drop that overlaps no node yields a free-floating node. Otherwise the nearest
// overlapping node becomes the anchor. The position is always the drop position;
// how the renderer offsets a node from its anchor is a presentation concern.
func Plan(req canvas.PlacementRequest, nodes []*entities.Node) entities.NodeDraft {
	sourceID := req.StartNode.ID()
	draft := entities.NodeDraft{
		SpaceID:  req.StartNode.SpaceID(),
		Kind:     req.Kind,
		Position: req.DropPosition,
		SourceID: &sourceID,
	}

	candidates := canvas.Overlaps(req.DropPosition, nodes)
	if len(candidates) == 0 {
		return draft
	}

	if anchor, ok := canvas.Nearest(req.DropPosition, candidates); ok {
		anchorID := anchor.ID()
		draft.AnchorID = &anchorID
	}
	return draft
}

// PlacementCommitter hands placement drafts to the node creator
type PlacementCommitter struct {
	creator ports.NodeCreator
	metrics *observability.Collector
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewPlacementCommitter creates a new placement committer
func NewPlacementCommitter(
	creator ports.NodeCreator,
	metrics *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *PlacementCommitter {
	if tracer == nil {
		tracer = observability.NoopTracer()
	}
	return &PlacementCommitter{
		creator: creator,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// Commit creates the drafted node. Failures come back as a CommitFailure and are not retried.
func (c *PlacementCommitter) Commit(ctx context.Context, draft entities.NodeDraft) (*entities.Node, error) {
	ctx, span := observability.StartSpan(ctx, c.tracer, "canvas.Commit",
		attribute.String("space.id", draft.SpaceID.String()),
		attribute.String("node.kind", draft.Kind.String()),
		attribute.Bool("node.anchored", draft.AnchorID != nil),
	)

	start := time.Now()
	node, err := c.creator.CreateNode(ctx, draft)
	if err != nil {
		err = pkgerrors.NewCommitFailureError(err)
		observability.EndSpan(span, err)
		c.metrics.RecordPlacement(draft.Kind.String(), "failed")
		c.logger.Warn("Placement commit failed",
			zap.String("spaceID", draft.SpaceID.String()),
			zap.String("kind", draft.Kind.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	observability.EndSpan(span, nil)
	c.metrics.RecordPlacement(draft.Kind.String(), "committed")
	return node, nil
}
