package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"gooey-backend/application/ports"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// nodeItem represents the DynamoDB item structure for a canvas node
type nodeItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	GSI1PK     string  `dynamodbav:"GSI1PK"` // direct NodeID lookups
	GSI1SK     string  `dynamodbav:"GSI1SK"`
	EntityType string  `dynamodbav:"EntityType"`
	NodeID     string  `dynamodbav:"NodeID"`
	SpaceID    string  `dynamodbav:"SpaceID"`
	Kind       string  `dynamodbav:"Kind"`
	X          float64 `dynamodbav:"X"`
	Y          float64 `dynamodbav:"Y"`
	SourceID   string  `dynamodbav:"SourceID,omitempty"`
	AnchorID   string  `dynamodbav:"AnchorID,omitempty"`
	Ref        string  `dynamodbav:"Ref,omitempty"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
}

func newNodeItem(node *entities.Node) nodeItem {
	item := nodeItem{
		PK:         spacePK(node.SpaceID().String()),
		SK:         nodeSK(node.CreatedAt(), node.ID().String()),
		GSI1PK:     nodeGSI1PK(node.ID().String()),
		GSI1SK:     metadataSK,
		EntityType: entityNode,
		NodeID:     node.ID().String(),
		SpaceID:    node.SpaceID().String(),
		Kind:       node.Kind().String(),
		X:          node.Position().X(),
		Y:          node.Position().Y(),
		Ref:        node.Ref(),
		CreatedAt:  formatTime(node.CreatedAt()),
	}
	if id := node.SourceID(); id != nil {
		item.SourceID = id.String()
	}
	if id := node.AnchorID(); id != nil {
		item.AnchorID = id.String()
	}
	return item
}

func (i nodeItem) toEntity() (*entities.Node, error) {
	id, err := valueobjects.NodeIDFromString(i.NodeID)
	if err != nil {
		return nil, err
	}
	spaceID, err := valueobjects.SpaceIDFromString(i.SpaceID)
	if err != nil {
		return nil, err
	}
	kind, err := entities.ParseNodeKind(i.Kind)
	if err != nil {
		return nil, err
	}
	pos, err := valueobjects.NewPosition(i.X, i.Y)
	if err != nil {
		return nil, err
	}
	sourceID, err := optionalNodeID(i.SourceID)
	if err != nil {
		return nil, err
	}
	anchorID, err := optionalNodeID(i.AnchorID)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructNode(id, spaceID, kind, pos, sourceID, anchorID, i.Ref, parseTime(i.CreatedAt))
}

func optionalNodeID(s string) (*valueobjects.NodeID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := valueobjects.NodeIDFromString(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// NodeRepository implements ports.NodeRepository using DynamoDB
type NodeRepository struct {
	client    Client
	tableName string
	indexName string // GSI1 - for direct NodeID lookups
	logger    *zap.Logger
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client Client, tableName, indexName string, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// Save persists a node; nodes are immutable once placed so the put is create-only
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	av, err := attributevalue.MarshalMap(newNodeItem(node))
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}); err != nil {
		var exists *types.ConditionalCheckFailedException
		if errors.As(err, &exists) {
			return pkgerrors.NewConflictError("node already placed").WithCause(err)
		}
		r.logger.Error("Failed to save node to DynamoDB",
			zap.Error(err),
			zap.String("nodeID", node.ID().String()),
			zap.String("spaceID", node.SpaceID().String()),
		)
		return pkgerrors.NewDatabaseError("save node", err)
	}
	return nil
}

// GetByID retrieves a node through GSI1
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	keyExpr := expression.Key("GSI1PK").Equal(expression.Value(nodeGSI1PK(id.String()))).
		And(expression.Key("GSI1SK").Equal(expression.Value(metadataSK)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get node", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	var item nodeItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node: %w", err)
	}
	return item.toEntity()
}

// GetBySpaceID retrieves every node of a space in creation order
func (r *NodeRepository) GetBySpaceID(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Node, error) {
	keyExpr := expression.Key("PK").Equal(expression.Value(spacePK(spaceID.String()))).
		And(expression.Key("SK").BeginsWith("NODE#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})

	nodes := make([]*entities.Node, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list nodes", err)
		}

		for _, raw := range page.Items {
			var item nodeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal node item", zap.Error(err))
				continue
			}
			node, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping invalid node item", zap.String("nodeID", item.NodeID), zap.Error(err))
				continue
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// Delete removes a node item. The sort key is rebuilt from the node's creation time.
func (r *NodeRepository) Delete(ctx context.Context, node *entities.Node) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: spacePK(node.SpaceID().String())},
			"SK": &types.AttributeValueMemberS{Value: nodeSK(node.CreatedAt(), node.ID().String())},
		},
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete node", err)
	}

	r.logger.Debug("Node deleted", zap.String("nodeID", node.ID().String()))
	return nil
}
