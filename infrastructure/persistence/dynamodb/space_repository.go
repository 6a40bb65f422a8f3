package dynamodb

import (
	"context"
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

// spaceItem represents the DynamoDB item structure for a space
type spaceItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SpaceID    string `dynamodbav:"SpaceID"`
	UserID     string `dynamodbav:"UserID"`
	Name       string `dynamodbav:"Name"`
	ParentID   string `dynamodbav:"ParentID,omitempty"`
	HeadNodeID string `dynamodbav:"HeadNodeID,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func newSpaceItem(space *entities.Space) spaceItem {
	item := spaceItem{
		PK:         spacePK(space.ID().String()),
		SK:         metadataSK,
		EntityType: entitySpace,
		SpaceID:    space.ID().String(),
		UserID:     space.UserID(),
		Name:       space.Name(),
		CreatedAt:  formatTime(space.CreatedAt()),
		UpdatedAt:  formatTime(space.UpdatedAt()),
	}
	if parent := space.ParentID(); parent != nil {
		item.ParentID = parent.String()
	}
	if !space.HeadNodeID().IsZero() {
		item.HeadNodeID = space.HeadNodeID().String()
	}
	return item
}

func (i spaceItem) toEntity() (*entities.Space, error) {
	id, err := valueobjects.SpaceIDFromString(i.SpaceID)
	if err != nil {
		return nil, err
	}

	var parentID *valueobjects.SpaceID
	if i.ParentID != "" {
		parent, err := valueobjects.SpaceIDFromString(i.ParentID)
		if err != nil {
			return nil, err
		}
		parentID = &parent
	}

	var headID valueobjects.NodeID
	if i.HeadNodeID != "" {
		if headID, err = valueobjects.NodeIDFromString(i.HeadNodeID); err != nil {
			return nil, err
		}
	}

	return entities.ReconstructSpace(id, i.UserID, i.Name, parentID, headID, parseTime(i.CreatedAt), parseTime(i.UpdatedAt))
}

// SpaceRepository implements ports.SpaceRepository using DynamoDB
type SpaceRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

var _ ports.SpaceRepository = (*SpaceRepository)(nil)

// NewSpaceRepository creates a new SpaceRepository
func NewSpaceRepository(client Client, tableName string, logger *zap.Logger) *SpaceRepository {
	return &SpaceRepository{client: client, tableName: tableName, logger: logger}
}

// Save persists a space
func (r *SpaceRepository) Save(ctx context.Context, space *entities.Space) error {
	av, err := attributevalue.MarshalMap(newSpaceItem(space))
	if err != nil {
		return fmt.Errorf("failed to marshal space: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save space to DynamoDB",
			zap.Error(err),
			zap.String("spaceID", space.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save space", err)
	}

	r.logger.Debug("Space saved", zap.String("spaceID", space.ID().String()))
	return nil
}

// GetByID retrieves a space by its ID
func (r *SpaceRepository) GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            metadataKey(spacePK(id.String())),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get space", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("space").WithCode(pkgerrors.CodeSpaceNotFound)
	}

	var item spaceItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal space: %w", err)
	}
	return item.toEntity()
}

// Exists reports whether a space is stored
func (r *SpaceRepository) Exists(ctx context.Context, id valueobjects.SpaceID) (bool, error) {
	return itemExists(ctx, r.client, r.tableName, metadataKey(spacePK(id.String())), "exists space")
}

// Delete removes the space's metadata item
func (r *SpaceRepository) Delete(ctx context.Context, id valueobjects.SpaceID) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       metadataKey(spacePK(id.String())),
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete space", err)
	}

	r.logger.Debug("Space deleted", zap.String("spaceID", id.String()))
	return nil
}

func metadataKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

// itemExists fetches only the partition key of the item at key
func itemExists(ctx context.Context, client Client, table string, key map[string]types.AttributeValue, op string) (bool, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("PK"))).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(table),
		Key:                      key,
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError(op, err)
	}
	return len(result.Item) > 0, nil
}
