package sensordata

import "fmt"

// UnknownSensorTypeError reports a sensor type code with no registered
// payload schema.
type UnknownSensorTypeError struct {
	SensorType string
}

func (e *UnknownSensorTypeError) Error() string {
	return fmt.Sprintf("invalid sensor id. sensor_id: %s", e.SensorType)
}

// SizeError reports a payload whose byte length does not match its declared
// layout. The message carries expected vs actual size, and the declared
// record count for GPS payloads, to aid operator diagnosis.
type SizeError struct {
	Expected    int
	Actual      int
	RecordCount int // declared GPS record count, -1 when not applicable
}

func (e *SizeError) Error() string {
	if e.RecordCount < 0 {
		return fmt.Sprintf("invalid size of sensor data: must be %d bytes but got %d bytes", e.Expected, e.Actual)
	}
	return fmt.Sprintf("invalid size of sensor data: must be %d bytes but got %d bytes. record count is %d",
		e.Expected, e.Actual, e.RecordCount)
}
