// Package export renders stored GPS points as CSV, KML or msgpack for the
// track download endpoints. The JSON representation is the stored rows
// themselves and needs no renderer here.
package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ryoqn/trackdata-serverless/internal/models"
)

// RenderError reports a conversion or formatting failure while building an
// export document. The whole export aborts; no partial file is emitted.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s export: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// msToKnots converts stored velocity (m/s) for CSV display.
const msToKnots = 1.943844

// jst is the display zone for envelope timestamps.
var jst = time.FixedZone("JST", 9*60*60)

// localTimeLayout mirrors the ja-JP date-time rendering the map frontend
// expects, e.g. "2021/3/4 05:06:07".
const localTimeLayout = "2006/1/2 15:04:05"

var csvHeader = []string{
	"uplink_id",
	"date",
	"router_id",
	"device_id",
	"rsrp",
	"rsrq",
	"sampling_time_local",
	"sampling_time_unix",
	"latitude",
	"longitude",
	"hdop",
	"velocity",
	"direction",
}

// ToCSV renders one row per point under a header row. Velocity is converted
// from m/s to knots at 2 decimal places; all other numbers pass through the
// stored precision. An empty input yields just the header.
func ToCSV(points []models.StoredGpsPoint) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", &RenderError{Format: "csv", Err: err}
	}
	for _, p := range points {
		row := []string{
			p.UplinkID,
			time.Unix(p.Date, 0).In(jst).Format(localTimeLayout),
			p.RouterID,
			p.DeviceID,
			strconv.Itoa(p.Rsrp),
			strconv.Itoa(p.Rsrq),
			samplingTimeLocal(p.SamplingTime),
			strconv.FormatInt(p.SamplingTime, 10),
			formatNumber(p.Latitude),
			formatNumber(p.Longitude),
			formatNumber(p.Hdop),
			formatFixed(p.Velocity*msToKnots, 2),
			formatNumber(p.Direction),
		}
		if err := w.Write(row); err != nil {
			return "", &RenderError{Format: "csv", Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", &RenderError{Format: "csv", Err: err}
	}
	return buf.String(), nil
}

// samplingTimeLocal formats the sampling epoch without a zone shift: the
// trackers report sampling time as JST wall clock already, so the raw epoch
// rendered at UTC shows the intended local time.
func samplingTimeLocal(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(localTimeLayout)
}

// formatNumber renders a stored value with its shortest exact decimal form,
// matching how the raw JSON export prints it.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFixed renders v with exactly places fractional digits, rounding
// half away from zero.
func formatFixed(v float64, places int) string {
	p := math.Pow10(places)
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', places, 64)
}
