package models

import (
	"fmt"
	"strings"
	"time"
)

// SensorType is the short code that selects the binary payload schema.
type SensorType string

const (
	SensorTypeSetting SensorType = "0000"
	SensorTypeGps     SensorType = "0095"
)

// UplinkEnvelope carries the webhook metadata for one telemetry transmission.
// It is created once per webhook call and owns the decoded payload.
type UplinkEnvelope struct {
	UplinkID   string
	OccurredAt time.Time
	DeviceID   string
	RouterID   string
	SensorType SensorType
}

// UplinkRecord is the decoded payload variant, either *GpsUplink or
// *SettingSnapshot. Consumers dispatch with a type switch.
type UplinkRecord interface {
	SensorType() SensorType
}

// GpsFixRecord is one 24-byte segment of a GPS payload. Records keep the
// raw decoded values; rounding happens when write requests are built.
type GpsFixRecord struct {
	SamplingTime int32   // unix seconds
	Latitude     float32 // degrees
	Longitude    float32 // degrees
	Hdop         float32
	Velocity     float32 // m/s
	Direction    float32 // degrees, 0-360
}

// GpsUplink is a decoded GPS track batch. Records preserve payload order,
// which is chronological by construction.
type GpsUplink struct {
	Envelope UplinkEnvelope
	Rsrp     int8
	Rsrq     int8
	Records  []GpsFixRecord
}

func (u *GpsUplink) SensorType() SensorType { return SensorTypeGps }

func (u *GpsUplink) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uplink_id: %s\n", u.Envelope.UplinkID)
	fmt.Fprintf(&b, "date: %d\n", u.Envelope.OccurredAt.Unix())
	fmt.Fprintf(&b, "device_id: %s\n", u.Envelope.DeviceID)
	fmt.Fprintf(&b, "router_id: %s\n", u.Envelope.RouterID)
	fmt.Fprintf(&b, "rsrp: %d\n", u.Rsrp)
	fmt.Fprintf(&b, "rsrq: %d\n", u.Rsrq)
	fmt.Fprintf(&b, "gps_records_num: %d\n", len(u.Records))
	for i, r := range u.Records {
		fmt.Fprintf(&b, "gps_records_index: %d\n", i)
		fmt.Fprintf(&b, " sampling_time: %d\n", r.SamplingTime)
		fmt.Fprintf(&b, " latitude: %.5f\n", r.Latitude)
		fmt.Fprintf(&b, " longitude: %.5f\n", r.Longitude)
		fmt.Fprintf(&b, " hdop: %.5f\n", r.Hdop)
		fmt.Fprintf(&b, " velocity: %.2f\n", r.Velocity)
		fmt.Fprintf(&b, " direction: %.2f\n", r.Direction)
	}
	return b.String()
}

// SettingSnapshot is a decoded device configuration report. Exactly one is
// carried per setting uplink.
type SettingSnapshot struct {
	Envelope             UplinkEnvelope
	AppFwVersion         string // "major.minor.patch"
	LteCurrentFwVersion  string
	LteLatestFwVersion   string
	TimeZone             int8
	LimitSatelliteNum    int8
	LimitRsrp            int8
	LimitRsrq            int8
	SamplingMode         int8
	SamplingCycle        int32
	UplinkMode           int8
	UplinkCycle          int32
	PollingDownlinkCycle int16
}

func (s *SettingSnapshot) SensorType() SensorType { return SensorTypeSetting }

func (s *SettingSnapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "appFwVersion: %s\n", s.AppFwVersion)
	fmt.Fprintf(&b, "lteCurrentFwVersion: %s\n", s.LteCurrentFwVersion)
	fmt.Fprintf(&b, "lteLatestFwVersion: %s\n", s.LteLatestFwVersion)
	fmt.Fprintf(&b, "timeZone: %d\n", s.TimeZone)
	fmt.Fprintf(&b, "limitSatelliteNum: %d\n", s.LimitSatelliteNum)
	fmt.Fprintf(&b, "limitRsrp: %d\n", s.LimitRsrp)
	fmt.Fprintf(&b, "limitRsrq: %d\n", s.LimitRsrq)
	fmt.Fprintf(&b, "samplingMode: %d\n", s.SamplingMode)
	fmt.Fprintf(&b, "samplingCycle: %d\n", s.SamplingCycle)
	fmt.Fprintf(&b, "uplinkMode: %d\n", s.UplinkMode)
	fmt.Fprintf(&b, "uplinkCycle: %d\n", s.UplinkCycle)
	fmt.Fprintf(&b, "pollingDownlinkCycle: %d\n", s.PollingDownlinkCycle)
	return b.String()
}
