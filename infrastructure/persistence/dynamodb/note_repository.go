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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// noteItem represents the DynamoDB item structure for a note
type noteItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	NoteID     string `dynamodbav:"NoteID"`
	UserID     string `dynamodbav:"UserID"`
	Name       string `dynamodbav:"Name"`
	Content    string `dynamodbav:"Content"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func newNoteItem(note *entities.Note) noteItem {
	return noteItem{
		PK:         notePK(note.ID().String()),
		SK:         metadataSK,
		EntityType: entityNote,
		NoteID:     note.ID().String(),
		UserID:     note.UserID(),
		Name:       note.Name(),
		Content:    note.Content(),
		CreatedAt:  formatTime(note.CreatedAt()),
		UpdatedAt:  formatTime(note.UpdatedAt()),
	}
}

func (i noteItem) toEntity() (*entities.Note, error) {
	id, err := valueobjects.NoteIDFromString(i.NoteID)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructNote(id, i.UserID, i.Name, i.Content, parseTime(i.CreatedAt), parseTime(i.UpdatedAt))
}

// NoteRepository implements ports.NoteRepository using DynamoDB
type NoteRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

var _ ports.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(client Client, tableName string, logger *zap.Logger) *NoteRepository {
	return &NoteRepository{client: client, tableName: tableName, logger: logger}
}

// Save persists a note
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note) error {
	av, err := attributevalue.MarshalMap(newNoteItem(note))
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save note to DynamoDB",
			zap.Error(err),
			zap.String("noteID", note.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save note", err)
	}
	return nil
}

// GetByID retrieves a note by its ID
func (r *NoteRepository) GetByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            metadataKey(notePK(id.String())),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get note", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
	}

	var item noteItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note: %w", err)
	}
	return item.toEntity()
}

// Exists reports whether a note is stored
func (r *NoteRepository) Exists(ctx context.Context, id valueobjects.NoteID) (bool, error) {
	return itemExists(ctx, r.client, r.tableName, metadataKey(notePK(id.String())), "exists note")
}

// Delete removes a note and reports whether an item was actually deleted
func (r *NoteRepository) Delete(ctx context.Context, id valueobjects.NoteID) (int, error) {
	result, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          metadataKey(notePK(id.String())),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("delete note", err)
	}
	if len(result.Attributes) == 0 {
		return 0, nil
	}

	r.logger.Debug("Note deleted", zap.String("noteID", id.String()))
	return 1, nil
}
