package store

import (
	"math"
	"strconv"
)

// roundTo rounds half away from zero at the given number of decimal places.
// This is a persisted-format contract: DynamoDB number attributes are
// written at exactly this precision.
func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// formatFixed renders v with exactly places fractional digits after
// half-away-from-zero rounding, e.g. formatFixed(10, 2) == "10.00".
func formatFixed(v float64, places int) string {
	return strconv.FormatFloat(roundTo(v, places), 'f', places, 64)
}
