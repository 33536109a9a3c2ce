package sensordata

import (
	"github.com/ryoqn/trackdata-serverless/internal/models"
)

const (
	gpsHeaderSize = 6
	gpsRecordSize = 24
)

var gpsHeaderLayout = layout{
	{"rsrp", kindInt8},
	{"rsrq", kindInt8},
	{"recordCount", kindUint32},
}

var gpsRecordLayout = layout{
	{"samplingTime", kindInt32},
	{"latitude", kindFloat32},
	{"longitude", kindFloat32},
	{"hdop", kindFloat32},
	{"velocity", kindFloat32},
	{"direction", kindFloat32},
}

// decodeGps parses a GPS track batch: a 6-byte header followed by exactly
// recordCount 24-byte fix records. A record count of zero is valid and
// yields an empty record slice.
func decodeGps(env models.UplinkEnvelope, payload []byte) (*models.GpsUplink, error) {
	if len(payload) < gpsHeaderSize {
		return nil, &SizeError{Expected: gpsHeaderSize, Actual: len(payload), RecordCount: -1}
	}

	header, err := gpsHeaderLayout.decode(payload[:gpsHeaderSize])
	if err != nil {
		return nil, err
	}
	count := int(header.uint32("recordCount"))

	want := gpsHeaderSize + gpsRecordSize*count
	if len(payload) != want {
		return nil, &SizeError{Expected: want, Actual: len(payload), RecordCount: count}
	}

	records := make([]models.GpsFixRecord, 0, count)
	for i := 0; i < count; i++ {
		seg := payload[gpsHeaderSize+gpsRecordSize*i : gpsHeaderSize+gpsRecordSize*(i+1)]
		v, err := gpsRecordLayout.decode(seg)
		if err != nil {
			return nil, err
		}
		records = append(records, models.GpsFixRecord{
			SamplingTime: v.int32("samplingTime"),
			Latitude:     v.float32("latitude"),
			Longitude:    v.float32("longitude"),
			Hdop:         v.float32("hdop"),
			Velocity:     v.float32("velocity"),
			Direction:    v.float32("direction"),
		})
	}

	return &models.GpsUplink{
		Envelope: env,
		Rsrp:     header.int8("rsrp"),
		Rsrq:     header.int8("rsrq"),
		Records:  records,
	}, nil
}
