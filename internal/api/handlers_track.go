// handlers_track.go - Track query, export and delete handlers
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ryoqn/trackdata-serverless/internal/export"
	"github.com/ryoqn/trackdata-serverless/internal/logging"
)

// TrackHandlerImpl implements the TrackHandler interface.
type TrackHandlerImpl struct {
	store    TrackStore
	gpsTable string
	log      *zap.Logger
}

// NewTrackHandler creates a new track handler instance.
func NewTrackHandler(store TrackStore, gpsTable string, log *zap.Logger) TrackHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrackHandlerImpl{store: store, gpsTable: gpsTable, log: log}
}

// trackQuery is the parsed query string shared by GET and DELETE.
type trackQuery struct {
	deviceID string
	after    int64 // epoch seconds, inclusive
	before   int64 // epoch seconds, inclusive
}

func parseTrackQuery(c echo.Context) (trackQuery, error) {
	q := trackQuery{deviceID: c.QueryParam("device_id")}
	if q.deviceID == "" {
		return q, NewValidationError("device_id")
	}

	after, err := parseTimeParam(c.QueryParam("after"))
	if err != nil {
		return q, NewValidationError("after")
	}
	before, err := parseTimeParam(c.QueryParam("before"))
	if err != nil {
		return q, NewValidationError("before")
	}
	q.after = after
	q.before = before
	return q, nil
}

// parseTimeParam converts a date-time query value to floored epoch seconds.
func parseTimeParam(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty time value")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unparseable time value %q", value)
}

// HandleGetTrack serves the stored points for a device and time range in
// the requested export format.
func (h *TrackHandlerImpl) HandleGetTrack(c echo.Context) error {
	log := logging.WithRequestID(h.log, c.Response().Header().Get(echo.HeaderXRequestID))

	q, err := parseTrackQuery(c)
	if err != nil {
		return err
	}

	points, err := h.store.QueryRange(c.Request().Context(), h.gpsTable, q.deviceID, q.after, q.before)
	if err != nil {
		log.Error("track query failed", zap.String("device_id", q.deviceID), zap.Error(err))
		return NewBadRequestError("get tracker failed", nil)
	}

	switch c.QueryParam("format") {
	case "csv":
		body, err := export.ToCSV(points)
		if err != nil {
			log.Error("csv export failed", zap.Error(err))
			return NewInternalError("get tracker failed", nil)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=tracker.csv`)
		return c.Blob(http.StatusOK, "text/csv; charset=UTF-8", []byte(body))
	case "json":
		return c.JSON(http.StatusOK, points)
	case "kml":
		body, err := export.ToKML(points)
		if err != nil {
			log.Error("kml export failed", zap.Error(err))
			return NewInternalError("get tracker failed", nil)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=tracker.kml`)
		return c.Blob(http.StatusOK, "application/vnd.google-earth.kml+xml", []byte(body))
	case "msgpack":
		body, err := export.ToMsgpack(points)
		if err != nil {
			log.Error("msgpack export failed", zap.Error(err))
			return NewInternalError("get tracker failed", nil)
		}
		return c.Blob(http.StatusOK, "application/msgpack", body)
	default:
		return NewValidationError("format")
	}
}

// HandleDeleteTrack removes the stored points for a device and time range.
func (h *TrackHandlerImpl) HandleDeleteTrack(c echo.Context) error {
	log := logging.WithRequestID(h.log, c.Response().Header().Get(echo.HeaderXRequestID))

	q, err := parseTrackQuery(c)
	if err != nil {
		return err
	}

	outcomes, err := h.store.DeleteRange(c.Request().Context(), h.gpsTable, q.deviceID, q.after, q.before)
	if err != nil {
		log.Error("track delete failed",
			zap.String("device_id", q.deviceID),
			zap.Int64("after", q.after),
			zap.Int64("before", q.before),
			zap.Error(err))
		return NewBadRequestError("delete failed", nil)
	}

	log.Info("track range deleted",
		zap.String("device_id", q.deviceID),
		zap.Int("batches", len(outcomes)))
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "delete succeeded",
	})
}
