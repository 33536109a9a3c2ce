/*
Package sensordata decodes the fixed-layout binary payloads uplinked by the
field trackers into typed records.

Payloads are described by an explicit field schema (ordered name/kind pairs)
consumed by a generic little-endian reader, so the byte layout lives in one
place instead of scattered offset arithmetic. Two schemas exist, selected by
the sensor type code on the envelope:

	"0000" - device setting snapshot, exactly 25 bytes
	"0095" - GPS track batch, 6-byte header + 24 bytes per record

Decoding performs no unit conversion and no rounding; the in-memory records
stay lossless and downstream code applies persistence precision.
*/
package sensordata

import (
	"encoding/binary"
	"fmt"
	"math"
)

// kind is the wire type of a single field. All multi-byte kinds are
// little-endian.
type kind int

const (
	kindInt8 kind = iota
	kindInt16
	kindInt32
	kindUint32
	kindFloat32
)

func (k kind) size() int {
	switch k {
	case kindInt8:
		return 1
	case kindInt16:
		return 2
	default:
		return 4
	}
}

// field is one fixed-width value in a payload layout. Offsets derive from
// field order, so inserting a field shifts everything after it.
type field struct {
	name string
	kind kind
}

// layout is an ordered field schema for a fixed-size payload segment.
type layout []field

// size returns the exact byte length a buffer must have for this layout.
func (l layout) size() int {
	n := 0
	for _, f := range l {
		n += f.kind.size()
	}
	return n
}

// decode reads every field in order. The buffer length must match the
// layout size exactly; partial decodes are never produced.
func (l layout) decode(buf []byte) (values, error) {
	if len(buf) != l.size() {
		return values{}, &SizeError{Expected: l.size(), Actual: len(buf), RecordCount: -1}
	}
	vals := make([]any, len(l))
	off := 0
	for i, f := range l {
		switch f.kind {
		case kindInt8:
			vals[i] = int8(buf[off])
		case kindInt16:
			vals[i] = int16(binary.LittleEndian.Uint16(buf[off:]))
		case kindInt32:
			vals[i] = int32(binary.LittleEndian.Uint32(buf[off:]))
		case kindUint32:
			vals[i] = binary.LittleEndian.Uint32(buf[off:])
		case kindFloat32:
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		}
		off += f.kind.size()
	}
	return values{layout: l, vals: vals}, nil
}

// values holds decoded fields, retrievable by schema name. Lookups panic on
// a name or kind mismatch; that is a programming error, not input error.
type values struct {
	layout layout
	vals   []any
}

func (v values) lookup(name string) any {
	for i, f := range v.layout {
		if f.name == name {
			return v.vals[i]
		}
	}
	panic(fmt.Sprintf("sensordata: no field %q in layout", name))
}

func (v values) int8(name string) int8       { return v.lookup(name).(int8) }
func (v values) int16(name string) int16     { return v.lookup(name).(int16) }
func (v values) int32(name string) int32     { return v.lookup(name).(int32) }
func (v values) uint32(name string) uint32   { return v.lookup(name).(uint32) }
func (v values) float32(name string) float32 { return v.lookup(name).(float32) }
