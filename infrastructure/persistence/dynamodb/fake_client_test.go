package dynamodb

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient is an in-memory table that understands the key shapes the
// repositories use. Query matches items whose partition key is one of the
// expression values and, when a second value is given, whose sort key starts with it.
type fakeClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
	calls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(item map[string]types.AttributeValue) string {
	return str(item["PK"]) + "|" + str(item["SK"])
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	key := itemKey(in.Item)
	if _, exists := f.items[key]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("conditional check failed")}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	key := itemKey(in.Key)
	old := f.items[key]
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	values := make([]string, 0, len(in.ExpressionAttributeValues))
	for _, v := range in.ExpressionAttributeValues {
		values = append(values, str(v))
	}
	contains := func(s string) bool {
		for _, v := range values {
			if v == s {
				return true
			}
		}
		return false
	}
	hasPrefix := func(s string) bool {
		for _, v := range values {
			if strings.HasPrefix(s, v) {
				return true
			}
		}
		return false
	}

	var keys []string
	for key, item := range f.items {
		if in.IndexName != nil {
			if contains(str(item["GSI1PK"])) {
				keys = append(keys, key)
			}
			continue
		}
		if contains(str(item["PK"])) && (len(values) == 1 || hasPrefix(str(item["SK"]))) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &dynamodb.QueryOutput{}
	for _, key := range keys {
		out.Items = append(out.Items, f.items[key])
	}
	return out, nil
}

func (f *fakeClient) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	for _, requests := range in.RequestItems {
		if len(requests) > maxBatchWrite {
			return nil, errors.New("too many items in batch")
		}
		for _, r := range requests {
			if r.PutRequest != nil {
				f.items[itemKey(r.PutRequest.Item)] = r.PutRequest.Item
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func strPtr(s string) *string { return &s }
