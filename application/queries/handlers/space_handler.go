package handlers

import (
	"context"
	"fmt"

	"gooey-backend/application/queries"
	"gooey-backend/application/queries/bus"
	"gooey-backend/application/services"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"

	"go.uber.org/zap"
)

// SpaceQueryHandler answers space read queries
type SpaceQueryHandler struct {
	spaces *services.SpaceService
	logger *zap.Logger
}

// NewSpaceQueryHandler creates a new space query handler
func NewSpaceQueryHandler(spaces *services.SpaceService, logger *zap.Logger) *SpaceQueryHandler {
	return &SpaceQueryHandler{spaces: spaces, logger: logger}
}

// Handle dispatches on the concrete query type
func (h *SpaceQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.SpaceExistsQuery:
		return h.exists(ctx, q)
	case queries.GetBreadcrumbQuery:
		return h.breadcrumb(ctx, q)
	case queries.ListSpaceNodesQuery:
		return h.listNodes(ctx, q)
	default:
		return nil, fmt.Errorf("%w: %T", bus.ErrQueryTypeMismatch, query)
	}
}

// exists answers false for ids that are not even well formed
func (h *SpaceQueryHandler) exists(ctx context.Context, q queries.SpaceExistsQuery) (bool, error) {
	id, err := valueobjects.SpaceIDFromString(q.SpaceID)
	if err != nil {
		return false, nil
	}
	return h.spaces.ExistsByID(ctx, id)
}

func (h *SpaceQueryHandler) breadcrumb(ctx context.Context, q queries.GetBreadcrumbQuery) (*queries.GetBreadcrumbResult, error) {
	id, err := valueobjects.SpaceIDFromString(q.SpaceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	chain, err := h.spaces.GetBreadcrumb(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &queries.GetBreadcrumbResult{Items: make([]queries.BreadcrumbItem, 0, len(chain))}
	for _, space := range chain {
		result.Items = append(result.Items, queries.BreadcrumbItem{
			ID:   space.ID().String(),
			Name: space.Name(),
		})
	}
	return result, nil
}

func (h *SpaceQueryHandler) listNodes(ctx context.Context, q queries.ListSpaceNodesQuery) (*queries.ListSpaceNodesResult, error) {
	id, err := valueobjects.SpaceIDFromString(q.SpaceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	nodes, err := h.spaces.ListNodes(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &queries.ListSpaceNodesResult{
		SpaceID: id.String(),
		Nodes:   make([]queries.NodeView, 0, len(nodes)),
	}
	for _, n := range nodes {
		result.Nodes = append(result.Nodes, queries.NewNodeView(n))
	}
	return result, nil
}
