// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/ryoqn/trackdata-serverless/internal/ingest"
	"github.com/ryoqn/trackdata-serverless/internal/models"
	"github.com/ryoqn/trackdata-serverless/internal/store"
)

// WebhookHandler handles uplink notifications.
type WebhookHandler interface {
	HandleWebhook(c echo.Context) error
}

// TrackHandler handles track queries, exports and range deletes.
type TrackHandler interface {
	HandleGetTrack(c echo.Context) error
	HandleDeleteTrack(c echo.Context) error
}

// HealthHandler handles health check operations.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// UplinkProcessor is the ingestion service surface the webhook handler
// depends on. This allows mocking in tests.
type UplinkProcessor interface {
	ProcessUplink(ctx context.Context, req ingest.WebhookRequest) (*ingest.Result, error)
}

// TrackStore is the gateway surface the track handler depends on.
type TrackStore interface {
	QueryRange(ctx context.Context, table, deviceID string, after, before int64) ([]models.StoredGpsPoint, error)
	DeleteRange(ctx context.Context, table, deviceID string, after, before int64) ([]store.BatchOutcome, error)
}
