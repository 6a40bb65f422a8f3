package queries

import (
	"gooey-backend/pkg/utils"
)

// SpaceExistsQuery asks whether a space exists
type SpaceExistsQuery struct {
	SpaceID string `json:"space_id" validate:"required"`
}

// Validate validates the query
func (q SpaceExistsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetBreadcrumbQuery asks for the ancestor chain of a space
type GetBreadcrumbQuery struct {
	SpaceID string `json:"space_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetBreadcrumbQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// BreadcrumbItem is one entry of a breadcrumb, root first
type BreadcrumbItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetBreadcrumbResult is the root-to-space chain
type GetBreadcrumbResult struct {
	Items []BreadcrumbItem `json:"items"`
}

// ListSpaceNodesQuery lists the nodes placed on a space's canvas
type ListSpaceNodesQuery struct {
	SpaceID string `json:"space_id" validate:"required,uuid"`
}

// Validate validates the query
func (q ListSpaceNodesQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// NodeView is the read model of a placed node
type NodeView struct {
	ID        string  `json:"id"`
	SpaceID   string  `json:"spaceId"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	SourceID  *string `json:"sourceId,omitempty"`
	AnchorID  *string `json:"anchorId,omitempty"`
	Ref       string  `json:"ref,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// ListSpaceNodesResult holds a space's nodes in creation order
type ListSpaceNodesResult struct {
	SpaceID string     `json:"spaceId"`
	Nodes   []NodeView `json:"nodes"`
}
