/*
Package store maps decoded uplink records onto DynamoDB write requests and
submits them through a time-range gateway.

The table schema is a composite key: partition key DeviceId (string), sort
key SamplingTime (number). BatchWriteItem accepts at most 25 items per call,
so one logical write or delete may span several batches; batches are
independent requests and are not transactional across each other.
*/
package store

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ryoqn/trackdata-serverless/internal/models"
)

// MaxBatchItems is the DynamoDB BatchWriteItem per-call item limit.
const MaxBatchItems = 25

// pointTTL is how long a stored GPS point lives before the table's TTL
// reclaims it, measured from the envelope time.
const pointTTL = 7 * 24 * time.Hour

// BuildPutRequests maps a decoded uplink record to ordered put requests.
// GPS uplinks emit one item per fix record in payload order; setting
// snapshots emit exactly one item with fields verbatim. This is pure
// transformation; nothing is submitted here.
func BuildPutRequests(rec models.UplinkRecord) []types.WriteRequest {
	switch r := rec.(type) {
	case *models.GpsUplink:
		return buildGpsPuts(r)
	case *models.SettingSnapshot:
		return []types.WriteRequest{buildSettingPut(r)}
	default:
		return nil
	}
}

func buildGpsPuts(u *models.GpsUplink) []types.WriteRequest {
	env := u.Envelope
	date := strconv.FormatInt(env.OccurredAt.Unix(), 10)
	expiration := strconv.FormatInt(env.OccurredAt.UnixMilli()+pointTTL.Milliseconds(), 10)

	reqs := make([]types.WriteRequest, 0, len(u.Records))
	for _, rec := range u.Records {
		item := map[string]types.AttributeValue{
			"UplinkId":     &types.AttributeValueMemberS{Value: env.UplinkID},
			"Date":         &types.AttributeValueMemberN{Value: date},
			"DeviceId":     &types.AttributeValueMemberS{Value: env.DeviceID},
			"RouterId":     &types.AttributeValueMemberS{Value: env.RouterID},
			"Rsrq":         &types.AttributeValueMemberN{Value: strconv.Itoa(int(u.Rsrq))},
			"Rsrp":         &types.AttributeValueMemberN{Value: strconv.Itoa(int(u.Rsrp))},
			"SamplingTime": &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(rec.SamplingTime), 10)},
			"Longitude":    &types.AttributeValueMemberN{Value: formatFixed(float64(rec.Longitude), 5)},
			"Latitude":     &types.AttributeValueMemberN{Value: formatFixed(float64(rec.Latitude), 5)},
			"Hdop":         &types.AttributeValueMemberN{Value: formatFixed(float64(rec.Hdop), 2)},
			"Velocity":     &types.AttributeValueMemberN{Value: formatFixed(float64(rec.Velocity), 2)},
			"Direction":    &types.AttributeValueMemberN{Value: formatFixed(float64(rec.Direction), 2)},
			"Expiration":   &types.AttributeValueMemberN{Value: expiration},
		}
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	return reqs
}

func buildSettingPut(s *models.SettingSnapshot) types.WriteRequest {
	env := s.Envelope
	item := map[string]types.AttributeValue{
		"UplinkId":             &types.AttributeValueMemberS{Value: env.UplinkID},
		"Date":                 &types.AttributeValueMemberN{Value: strconv.FormatInt(env.OccurredAt.Unix(), 10)},
		"DeviceId":             &types.AttributeValueMemberS{Value: env.DeviceID},
		"RouterId":             &types.AttributeValueMemberS{Value: env.RouterID},
		"AppFwVersion":         &types.AttributeValueMemberS{Value: s.AppFwVersion},
		"LteCurrentFwVersion":  &types.AttributeValueMemberS{Value: s.LteCurrentFwVersion},
		"LteLatestFwVersion":   &types.AttributeValueMemberS{Value: s.LteLatestFwVersion},
		"TimeZone":             &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.TimeZone))},
		"LimitSatelliteNum":    &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.LimitSatelliteNum))},
		"LimitRsrp":            &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.LimitRsrp))},
		"LimitRsrq":            &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.LimitRsrq))},
		"SamplingMode":         &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.SamplingMode))},
		"SamplingCycle":        &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(s.SamplingCycle), 10)},
		"UplinkMode":           &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.UplinkMode))},
		"UplinkCycle":          &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(s.UplinkCycle), 10)},
		"PollingDownlinkCycle": &types.AttributeValueMemberN{Value: strconv.Itoa(int(s.PollingDownlinkCycle))},
	}
	return types.WriteRequest{PutRequest: &types.PutRequest{Item: item}}
}

// BuildDeleteRequests maps stored points to ordered delete requests keyed
// by (DeviceId, SamplingTime).
func BuildDeleteRequests(points []models.StoredGpsPoint) []types.WriteRequest {
	reqs := make([]types.WriteRequest, 0, len(points))
	for _, p := range points {
		reqs = append(reqs, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"DeviceId":     &types.AttributeValueMemberS{Value: p.DeviceID},
					"SamplingTime": &types.AttributeValueMemberN{Value: strconv.FormatInt(p.SamplingTime, 10)},
				},
			},
		})
	}
	return reqs
}

// SplitBatches splits items into contiguous, order-preserving batches of at
// most size elements. The last batch may be short; empty batches are never
// produced. Put and delete paths share this primitive.
func SplitBatches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
