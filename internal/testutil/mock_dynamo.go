// Package testutil provides an in-memory DynamoDB stand-in for gateway and
// handler tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrInjectedBatchFailure is returned by MockDynamo for batches matched by
// the FailBatch hook.
var ErrInjectedBatchFailure = errors.New("injected batch failure")

// MockDynamo implements the gateway's DynamoDB client subset backed by an
// in-memory table map keyed by (DeviceId, SamplingTime). It understands the
// one key condition shape the gateway issues.
type MockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// QueryErr, when set, fails every Query call.
	QueryErr error
	// FailBatch, when set, fails any BatchWriteItem call whose request
	// slice it matches. Matched batches are not applied.
	FailBatch func(reqs []types.WriteRequest) bool
	// Unprocessed, when set, selects requests to echo back as unprocessed
	// instead of applying them.
	Unprocessed func(req types.WriteRequest) bool

	BatchCalls int
}

func NewMockDynamo() *MockDynamo {
	return &MockDynamo{
		tables: make(map[string]map[string]map[string]types.AttributeValue),
	}
}

// Items returns a copy of every item in a table, unordered.
func (m *MockDynamo) Items(table string) []map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []map[string]types.AttributeValue
	for _, item := range m.tables[table] {
		items = append(items, item)
	}
	return items
}

func (m *MockDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	deviceID := stringAttr(in.ExpressionAttributeValues[":device_id"])
	after := numberAttr(in.ExpressionAttributeValues[":after"])
	before := numberAttr(in.ExpressionAttributeValues[":before"])

	var matched []map[string]types.AttributeValue
	for _, item := range m.tables[aws.ToString(in.TableName)] {
		if stringAttr(item["DeviceId"]) != deviceID {
			continue
		}
		ts := numberAttr(item["SamplingTime"])
		if ts >= after && ts <= before {
			matched = append(matched, item)
		}
	}
	// Store-native order: ascending sort key.
	sort.Slice(matched, func(i, j int) bool {
		return numberAttr(matched[i]["SamplingTime"]) < numberAttr(matched[j]["SamplingTime"])
	})

	return &dynamodb.QueryOutput{Items: matched, Count: int32(len(matched))}, nil
}

func (m *MockDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BatchCalls++
	out := &dynamodb.BatchWriteItemOutput{
		UnprocessedItems: make(map[string][]types.WriteRequest),
	}

	for table, reqs := range in.RequestItems {
		if m.FailBatch != nil && m.FailBatch(reqs) {
			return nil, ErrInjectedBatchFailure
		}
		if m.tables[table] == nil {
			m.tables[table] = make(map[string]map[string]types.AttributeValue)
		}
		for _, req := range reqs {
			if m.Unprocessed != nil && m.Unprocessed(req) {
				out.UnprocessedItems[table] = append(out.UnprocessedItems[table], req)
				continue
			}
			switch {
			case req.PutRequest != nil:
				m.tables[table][itemKey(req.PutRequest.Item)] = req.PutRequest.Item
			case req.DeleteRequest != nil:
				delete(m.tables[table], itemKey(req.DeleteRequest.Key))
			}
		}
		out.ConsumedCapacity = append(out.ConsumedCapacity, types.ConsumedCapacity{
			TableName:     aws.String(table),
			CapacityUnits: aws.Float64(float64(len(reqs))),
		})
	}
	return out, nil
}

func itemKey(item map[string]types.AttributeValue) string {
	return stringAttr(item["DeviceId"]) + "|" + strconv.FormatInt(numberAttr(item["SamplingTime"]), 10)
}

func stringAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func numberAttr(av types.AttributeValue) int64 {
	if n, ok := av.(*types.AttributeValueMemberN); ok {
		v, _ := strconv.ParseInt(n.Value, 10, 64)
		return v
	}
	return 0
}
