package models

// StoredGpsPoint is the persisted row for one GPS fix, keyed by
// (DeviceId, SamplingTime). Attribute names match the DynamoDB table
// schema; the JSON export is this representation verbatim.
type StoredGpsPoint struct {
	UplinkID     string  `json:"UplinkId" dynamodbav:"UplinkId"`
	Date         int64   `json:"Date" dynamodbav:"Date"` // envelope time, unix seconds
	DeviceID     string  `json:"DeviceId" dynamodbav:"DeviceId"`
	RouterID     string  `json:"RouterId" dynamodbav:"RouterId"`
	Rsrp         int     `json:"Rsrp" dynamodbav:"Rsrp"`
	Rsrq         int     `json:"Rsrq" dynamodbav:"Rsrq"`
	SamplingTime int64   `json:"SamplingTime" dynamodbav:"SamplingTime"`
	Latitude     float64 `json:"Latitude" dynamodbav:"Latitude"`     // 5 decimal places
	Longitude    float64 `json:"Longitude" dynamodbav:"Longitude"`   // 5 decimal places
	Hdop         float64 `json:"Hdop" dynamodbav:"Hdop"`             // 2 decimal places
	Velocity     float64 `json:"Velocity" dynamodbav:"Velocity"`     // m/s, 2 decimal places
	Direction    float64 `json:"Direction" dynamodbav:"Direction"`   // 2 decimal places
	Expiration   int64   `json:"Expiration" dynamodbav:"Expiration"` // TTL, unix milliseconds
}
