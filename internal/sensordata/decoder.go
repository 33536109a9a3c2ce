package sensordata

import (
	"github.com/ryoqn/trackdata-serverless/internal/models"
)

// Decode parses a raw payload into the record variant selected by the
// envelope's sensor type. Errors are fatal to the whole payload; no partial
// record set is ever returned.
func Decode(env models.UplinkEnvelope, payload []byte) (models.UplinkRecord, error) {
	switch env.SensorType {
	case models.SensorTypeSetting:
		return decodeSetting(env, payload)
	case models.SensorTypeGps:
		return decodeGps(env, payload)
	default:
		return nil, &UnknownSensorTypeError{SensorType: string(env.SensorType)}
	}
}
