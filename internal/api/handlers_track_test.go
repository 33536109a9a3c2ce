// handlers_track_test.go - Tests for track query, export and delete handlers
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ryoqn/trackdata-serverless/internal/models"
	"github.com/ryoqn/trackdata-serverless/internal/store"
)

type mockTrackStore struct {
	points      []models.StoredGpsPoint
	queryErr    error
	deleteErr   error
	gotTable    string
	gotDeviceID string
	gotAfter    int64
	gotBefore   int64
	deleteCalls int
}

func (m *mockTrackStore) QueryRange(ctx context.Context, table, deviceID string, after, before int64) ([]models.StoredGpsPoint, error) {
	m.gotTable, m.gotDeviceID, m.gotAfter, m.gotBefore = table, deviceID, after, before
	return m.points, m.queryErr
}

func (m *mockTrackStore) DeleteRange(ctx context.Context, table, deviceID string, after, before int64) ([]store.BatchOutcome, error) {
	m.deleteCalls++
	m.gotTable, m.gotDeviceID, m.gotAfter, m.gotBefore = table, deviceID, after, before
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return []store.BatchOutcome{{Batch: 0, Status: http.StatusOK}}, nil
}

func trackContext(t *testing.T, method string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	e := echo.New()
	req := httptest.NewRequest(method, "/track?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func trackParams(format string) map[string]string {
	return map[string]string{
		"device_id": "device-1",
		"after":     "2021-01-01T00:00:00Z",
		"before":    "2021-01-02T00:00:00Z",
		"format":    format,
	}
}

func samplePoints() []models.StoredGpsPoint {
	return []models.StoredGpsPoint{
		{
			UplinkID:     "uplink-1",
			Date:         1609459200,
			DeviceID:     "device-1",
			RouterID:     "router-1",
			Rsrp:         -90,
			Rsrq:         -10,
			SamplingTime: 1609459200,
			Latitude:     35.68128,
			Longitude:    139.76712,
			Hdop:         1.22,
			Velocity:     10,
			Direction:    271.52,
			Expiration:   1610064000000,
		},
	}
}

func TestTrackHandler_HandleGetTrackFormats(t *testing.T) {
	tests := []struct {
		name            string
		format          string
		wantContentType string
		wantDisposition string
		wantBodyPart    string
	}{
		{
			name:            "csv attachment with knots velocity",
			format:          "csv",
			wantContentType: "text/csv; charset=UTF-8",
			wantDisposition: "attachment; filename=tracker.csv",
			wantBodyPart:    "19.44",
		},
		{
			name:            "json rows verbatim",
			format:          "json",
			wantContentType: echo.MIMEApplicationJSON,
			wantBodyPart:    `"DeviceId":"device-1"`,
		},
		{
			name:            "kml attachment",
			format:          "kml",
			wantContentType: "application/vnd.google-earth.kml+xml",
			wantDisposition: "attachment; filename=tracker.kml",
			wantBodyPart:    "<LineString>",
		},
		{
			name:            "msgpack body",
			format:          "msgpack",
			wantContentType: "application/msgpack",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTrackStore{points: samplePoints()}
			handler := NewTrackHandler(mock, "test-GpsData", nil)

			c, rec := trackContext(t, http.MethodGet, trackParams(tt.format))
			if err := handler.HandleGetTrack(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rec.Code)
			}
			got := rec.Header().Get(echo.HeaderContentType)
			if !strings.HasPrefix(got, tt.wantContentType) {
				t.Errorf("expected content type %s, got %s", tt.wantContentType, got)
			}
			if tt.wantDisposition != "" {
				if d := rec.Header().Get(echo.HeaderContentDisposition); d != tt.wantDisposition {
					t.Errorf("expected disposition %q, got %q", tt.wantDisposition, d)
				}
			}
			if tt.wantBodyPart != "" && !strings.Contains(rec.Body.String(), tt.wantBodyPart) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBodyPart, rec.Body.String())
			}
			if mock.gotTable != "test-GpsData" {
				t.Errorf("expected query against test-GpsData, got %s", mock.gotTable)
			}
			if mock.gotAfter != 1609459200 || mock.gotBefore != 1609545600 {
				t.Errorf("expected range [1609459200, 1609545600], got [%d, %d]", mock.gotAfter, mock.gotBefore)
			}
		})
	}
}

func TestTrackHandler_HandleGetTrackValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		errCode string
	}{
		{
			name: "missing device_id",
			params: map[string]string{
				"after":  "2021-01-01T00:00:00Z",
				"before": "2021-01-02T00:00:00Z",
				"format": "json",
			},
			errCode: "VALIDATION_ERROR",
		},
		{
			name: "unparseable after",
			params: map[string]string{
				"device_id": "device-1",
				"after":     "yesterday",
				"before":    "2021-01-02T00:00:00Z",
				"format":    "json",
			},
			errCode: "VALIDATION_ERROR",
		},
		{
			name: "missing before",
			params: map[string]string{
				"device_id": "device-1",
				"after":     "2021-01-01T00:00:00Z",
				"format":    "json",
			},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "unknown format",
			params:  trackParams("xlsx"),
			errCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTrackHandler(&mockTrackStore{}, "test-GpsData", nil)

			c, _ := trackContext(t, http.MethodGet, tt.params)
			err := handler.HandleGetTrack(c)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Code != tt.errCode {
				t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
			}
		})
	}
}

func TestTrackHandler_HandleGetTrackDateOnlyRange(t *testing.T) {
	mock := &mockTrackStore{}
	handler := NewTrackHandler(mock, "test-GpsData", nil)

	c, rec := trackContext(t, http.MethodGet, map[string]string{
		"device_id": "device-1",
		"after":     "2021-01-01",
		"before":    "2021-01-02",
		"format":    "json",
	})
	if err := handler.HandleGetTrack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if mock.gotAfter != 1609459200 || mock.gotBefore != 1609545600 {
		t.Errorf("expected midnight epochs, got [%d, %d]", mock.gotAfter, mock.gotBefore)
	}
}

func TestTrackHandler_HandleGetTrackQueryFailure(t *testing.T) {
	mock := &mockTrackStore{queryErr: errors.New("dynamodb unavailable")}
	handler := NewTrackHandler(mock, "test-GpsData", nil)

	c, _ := trackContext(t, http.MethodGet, trackParams("json"))
	err := handler.HandleGetTrack(c)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.Status)
	}
	if apiErr.Message != "get tracker failed" {
		t.Errorf("expected generic message, got %q", apiErr.Message)
	}
}

func TestTrackHandler_HandleGetTrackEmptyRange(t *testing.T) {
	mock := &mockTrackStore{points: []models.StoredGpsPoint{}}
	handler := NewTrackHandler(mock, "test-GpsData", nil)

	c, rec := trackContext(t, http.MethodGet, trackParams("json"))
	if err := handler.HandleGetTrack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	var rows []models.StoredGpsPoint
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Errorf("failed to unmarshal: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestTrackHandler_HandleDeleteTrack(t *testing.T) {
	mock := &mockTrackStore{}
	handler := NewTrackHandler(mock, "test-GpsData", nil)

	c, rec := trackContext(t, http.MethodDelete, map[string]string{
		"device_id": "device-1",
		"after":     "2021-01-01T00:00:00Z",
		"before":    "2021-01-02T00:00:00Z",
	})
	if err := handler.HandleDeleteTrack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Errorf("failed to unmarshal: %v", err)
	}
	if response["message"] != "delete succeeded" {
		t.Errorf("expected delete succeeded, got %q", response["message"])
	}
	if mock.deleteCalls != 1 {
		t.Errorf("expected one delete call, got %d", mock.deleteCalls)
	}
}

func TestTrackHandler_HandleDeleteTrackFailure(t *testing.T) {
	mock := &mockTrackStore{deleteErr: errors.New("batch write failed for 1 of 2 batches")}
	handler := NewTrackHandler(mock, "test-GpsData", nil)

	c, _ := trackContext(t, http.MethodDelete, map[string]string{
		"device_id": "device-1",
		"after":     "2021-01-01T00:00:00Z",
		"before":    "2021-01-02T00:00:00Z",
	})
	err := handler.HandleDeleteTrack(c)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.Status)
	}
	if apiErr.Message != "delete failed" {
		t.Errorf("expected generic message, got %q", apiErr.Message)
	}
}

func TestTrackHandler_HandleDeleteTrackValidation(t *testing.T) {
	mock := &mockTrackStore{}
	handler := NewTrackHandler(mock, "test-GpsData", nil)

	c, _ := trackContext(t, http.MethodDelete, map[string]string{
		"after":  "2021-01-01T00:00:00Z",
		"before": "2021-01-02T00:00:00Z",
	})
	err := handler.HandleDeleteTrack(c)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if mock.deleteCalls != 0 {
		t.Errorf("delete must not run on invalid input, got %d calls", mock.deleteCalls)
	}
}
