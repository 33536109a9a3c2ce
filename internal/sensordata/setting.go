package sensordata

import (
	"fmt"

	"github.com/ryoqn/trackdata-serverless/internal/models"
)

var settingLayout = layout{
	{"appFwMajor", kindInt8},
	{"appFwMinor", kindInt8},
	{"appFwPatch", kindInt8},
	{"lteCurrentFwMajor", kindInt8},
	{"lteCurrentFwMinor", kindInt8},
	{"lteCurrentFwPatch", kindInt8},
	{"lteLatestFwMajor", kindInt8},
	{"lteLatestFwMinor", kindInt8},
	{"lteLatestFwPatch", kindInt8},
	{"timeZone", kindInt8},
	{"limitSatelliteNum", kindInt8},
	{"limitRsrp", kindInt8},
	{"limitRsrq", kindInt8},
	{"samplingMode", kindInt8},
	{"samplingCycle", kindInt32},
	{"uplinkMode", kindInt8},
	{"uplinkCycle", kindInt32},
	{"pollingDownlinkCycle", kindInt16},
}

// decodeSetting parses a 25-byte device configuration snapshot.
func decodeSetting(env models.UplinkEnvelope, payload []byte) (*models.SettingSnapshot, error) {
	v, err := settingLayout.decode(payload)
	if err != nil {
		return nil, err
	}

	return &models.SettingSnapshot{
		Envelope:             env,
		AppFwVersion:         fwVersion(v, "appFw"),
		LteCurrentFwVersion:  fwVersion(v, "lteCurrentFw"),
		LteLatestFwVersion:   fwVersion(v, "lteLatestFw"),
		TimeZone:             v.int8("timeZone"),
		LimitSatelliteNum:    v.int8("limitSatelliteNum"),
		LimitRsrp:            v.int8("limitRsrp"),
		LimitRsrq:            v.int8("limitRsrq"),
		SamplingMode:         v.int8("samplingMode"),
		SamplingCycle:        v.int32("samplingCycle"),
		UplinkMode:           v.int8("uplinkMode"),
		UplinkCycle:          v.int32("uplinkCycle"),
		PollingDownlinkCycle: v.int16("pollingDownlinkCycle"),
	}, nil
}

// fwVersion joins three signed version components as "major.minor.patch".
func fwVersion(v values, prefix string) string {
	return fmt.Sprintf("%d.%d.%d",
		v.int8(prefix+"Major"), v.int8(prefix+"Minor"), v.int8(prefix+"Patch"))
}
