package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gooey-backend/application/ports"
	"gooey-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBatchWrite is DynamoDB's BatchWriteItem limit
const maxBatchWrite = 25

// EventRecord is how a domain event is stored
type EventRecord struct {
	PK          string `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK          string `dynamodbav:"SK"` // EVENT#<unix nanos>#<event_id>
	EntityType  string `dynamodbav:"EntityType"`
	EventID     string `dynamodbav:"EventID"`
	EventType   string `dynamodbav:"EventType"`
	AggregateID string `dynamodbav:"AggregateID"`
	Payload     string `dynamodbav:"Payload"`
	Timestamp   string `dynamodbav:"Timestamp"`
	Version     int    `dynamodbav:"Version"`

	// TTL for automatic cleanup
	TTL int64 `dynamodbav:"TTL,omitempty"`
}

// EventLog appends domain events to the table as an audit trail.
// It implements ports.EventPublisher so it can sit next to the bus publisher.
type EventLog struct {
	client    Client
	tableName string
	retention time.Duration
	logger    *zap.Logger
}

var _ ports.EventPublisher = (*EventLog)(nil)

// NewEventLog creates an event log; a zero retention keeps records forever
func NewEventLog(client Client, tableName string, retention time.Duration, logger *zap.Logger) *EventLog {
	return &EventLog{
		client:    client,
		tableName: tableName,
		retention: retention,
		logger:    logger,
	}
}

// Publish appends a single event
func (l *EventLog) Publish(ctx context.Context, event events.DomainEvent) error {
	return l.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch appends events in chunks of 25
func (l *EventLog) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(domainEvents))
	for _, event := range domainEvents {
		record, err := l.toRecord(event)
		if err != nil {
			return err
		}

		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	for i := 0; i < len(writeRequests); i += maxBatchWrite {
		end := min(i+maxBatchWrite, len(writeRequests))

		result, err := l.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				l.tableName: writeRequests[i:end],
			},
		})
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}
		if unprocessed := len(result.UnprocessedItems[l.tableName]); unprocessed > 0 {
			return fmt.Errorf("failed to write %d events", unprocessed)
		}
	}

	l.logger.Debug("Events appended", zap.Int("count", len(domainEvents)))
	return nil
}

// Events returns the stored records of an aggregate, oldest first
func (l *EventLog) Events(ctx context.Context, aggregateID string) ([]EventRecord, error) {
	keyExpr := expression.Key("PK").Equal(expression.Value("EVENTS#" + aggregateID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(l.client, &dynamodb.QueryInput{
		TableName:                 aws.String(l.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})

	var records []EventRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		var batch []EventRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal events: %w", err)
		}
		records = append(records, batch...)
	}
	return records, nil
}

func (l *EventLog) toRecord(event events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return EventRecord{}, fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
	}

	eventID := uuid.New().String()
	ts := event.GetTimestamp()
	record := EventRecord{
		PK:          "EVENTS#" + event.GetAggregateID(),
		SK:          fmt.Sprintf("EVENT#%020d#%s", ts.UnixNano(), eventID),
		EntityType:  entityEvent,
		EventID:     eventID,
		EventType:   event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		Payload:     string(payload),
		Timestamp:   formatTime(ts),
		Version:     event.GetVersion(),
	}
	if l.retention > 0 {
		record.TTL = ts.Add(l.retention).Unix()
	}
	return record, nil
}
