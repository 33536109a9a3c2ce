package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"go.uber.org/zap"

	"github.com/ryoqn/trackdata-serverless/internal/models"
)

// DynamoAPI is the subset of the DynamoDB client used by the gateway.
// Tests substitute an in-memory implementation.
type DynamoAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Gateway issues time-range queries and batched writes against the tracker
// tables. It holds no state beyond the shared client handle and is safe for
// concurrent use.
type Gateway struct {
	client DynamoAPI
	log    *zap.Logger
}

func NewGateway(client DynamoAPI, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{client: client, log: log}
}

// BatchOutcome is the result of one BatchWriteItem call.
type BatchOutcome struct {
	Batch            int // index within the split batch sequence
	Status           int // HTTP-style status, 200 on success
	ConsumedCapacity float64
	Unprocessed      int // items the backend did not process
	Err              error
}

// OK reports whether this batch was fully applied.
func (o BatchOutcome) OK() bool {
	return o.Err == nil && o.Status == http.StatusOK && o.Unprocessed == 0
}

// BatchError reports a partial or full write failure: one or more batches
// did not come back with a success status. Batches that did succeed have
// been applied; there is no rollback.
type BatchError struct {
	Outcomes []BatchOutcome
}

// FailedBatches returns the indices of the batches that did not succeed.
func (e *BatchError) FailedBatches() []int {
	var failed []int
	for _, o := range e.Outcomes {
		if !o.OK() {
			failed = append(failed, o.Batch)
		}
	}
	return failed
}

func (e *BatchError) Error() string {
	failed := e.FailedBatches()
	idx := make([]string, len(failed))
	for i, b := range failed {
		idx[i] = strconv.Itoa(b)
	}
	return fmt.Sprintf("batch write failed for %d of %d batches (indices %s)",
		len(failed), len(e.Outcomes), strings.Join(idx, ","))
}

// QueryRange returns the stored points for a device whose SamplingTime lies
// in [after, before], both ends inclusive, in store-native ascending sort
// key order. Callers must not assume any re-sorting.
func (g *Gateway) QueryRange(ctx context.Context, table, deviceID string, after, before int64) ([]models.StoredGpsPoint, error) {
	out, err := g.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("DeviceId = :device_id AND SamplingTime BETWEEN :after AND :before"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":device_id": &types.AttributeValueMemberS{Value: deviceID},
			":after":     &types.AttributeValueMemberN{Value: strconv.FormatInt(after, 10)},
			":before":    &types.AttributeValueMemberN{Value: strconv.FormatInt(before, 10)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query %s range [%d,%d] for device %s: %w", table, after, before, deviceID, err)
	}

	points := make([]models.StoredGpsPoint, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &points); err != nil {
		return nil, fmt.Errorf("unmarshal stored points: %w", err)
	}
	return points, nil
}

// WriteAll splits items into DynamoDB-bounded batches and submits each as an
// independent request. Batches are dispatched concurrently and all outcomes
// are collected before returning. The error is nil only if every batch
// succeeded; otherwise it is a *BatchError and the caller observes a partial
// write with no compensation.
func (g *Gateway) WriteAll(ctx context.Context, table string, items []types.WriteRequest) ([]BatchOutcome, error) {
	if len(items) == 0 {
		return nil, nil
	}

	batches := SplitBatches(items, MaxBatchItems)
	outcomes := make([]BatchOutcome, len(batches))

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []types.WriteRequest) {
			defer wg.Done()
			outcomes[i] = g.writeBatch(ctx, table, i, batch)
		}(i, batch)
	}
	wg.Wait()

	for _, o := range outcomes {
		if !o.OK() {
			g.log.Error("batch write not fully applied",
				zap.String("table", table),
				zap.Int("batch", o.Batch),
				zap.Int("status", o.Status),
				zap.Int("unprocessed", o.Unprocessed),
				zap.Error(o.Err))
			return outcomes, &BatchError{Outcomes: outcomes}
		}
	}
	return outcomes, nil
}

func (g *Gateway) writeBatch(ctx context.Context, table string, index int, batch []types.WriteRequest) BatchOutcome {
	outcome := BatchOutcome{Batch: index}

	out, err := g.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems:           map[string][]types.WriteRequest{table: batch},
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		outcome.Err = err
		outcome.Status = statusOf(err)
		return outcome
	}

	outcome.Status = http.StatusOK
	for _, cc := range out.ConsumedCapacity {
		if cc.CapacityUnits != nil {
			outcome.ConsumedCapacity += *cc.CapacityUnits
		}
	}

	// Unprocessed items are throttling leftovers. The gateway defines no
	// retry policy, so they fail the batch and are reported to the caller.
	outcome.Unprocessed = len(out.UnprocessedItems[table])
	if outcome.Unprocessed > 0 {
		outcome.Err = fmt.Errorf("%d of %d items unprocessed", outcome.Unprocessed, len(batch))
	}
	return outcome
}

// DeleteRange removes the stored points for a device within [after, before].
// It queries first to materialize the exact key set, then deletes through
// the batched write path. A point written between the query and the delete
// submission survives; accepted for this append-mostly data.
func (g *Gateway) DeleteRange(ctx context.Context, table, deviceID string, after, before int64) ([]BatchOutcome, error) {
	points, err := g.QueryRange(ctx, table, deviceID, after, before)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}
	return g.WriteAll(ctx, table, BuildDeleteRequests(points))
}

// statusOf extracts the HTTP status from a transport-level SDK error,
// or 0 when the request never produced a response.
func statusOf(err error) int {
	var re *smithyhttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
