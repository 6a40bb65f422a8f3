package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Client is the subset of the DynamoDB API the repositories use.
// *dynamodb.Client satisfies it.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Entity type markers stored on every item
const (
	entitySpace = "SPACE"
	entityNode  = "NODE"
	entityNote  = "NOTE"
	entityEvent = "EVENT"

	metadataSK = "METADATA"
)

// Key layout:
//
//	space  PK=SPACE#<id>          SK=METADATA
//	node   PK=SPACE#<space id>    SK=NODE#<created unix nanos>#<id>   GSI1PK=NODE#<id>
//	note   PK=NOTE#<id>           SK=METADATA
//	event  PK=EVENTS#<aggregate>  SK=EVENT#<unix nanos>#<event id>
func spacePK(id string) string { return "SPACE#" + id }
func notePK(id string) string  { return "NOTE#" + id }
func nodeGSI1PK(id string) string {
	return "NODE#" + id
}

// nodeSK sorts a space's nodes by creation time
func nodeSK(createdAt time.Time, id string) string {
	return fmt.Sprintf("NODE#%020d#%s", createdAt.UnixNano(), id)
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
