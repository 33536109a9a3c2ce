// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Processor UplinkProcessor
	Store     TrackStore
	GpsTable  string
	AuthToken string
	Version   string
	Log       *zap.Logger
}

// Handlers holds all handler instances.
type Handlers struct {
	Health  HealthHandler
	Webhook WebhookHandler
	Track   TrackHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version),
		Webhook: NewWebhookHandler(deps.Processor, deps.Log),
		Track:   NewTrackHandler(deps.Store, deps.GpsTable, deps.Log),
	}
}

// RegisterRoutes registers all API routes with the Echo instance. The
// webhook and delete routes sit behind the static token check when a token
// is configured.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, authToken string) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/track", handlers.Track.HandleGetTrack)

	guarded := e.Group("", AuthMiddleware(authToken))
	guarded.POST("/webhook", handlers.Webhook.HandleWebhook)
	guarded.DELETE("/track", handlers.Track.HandleDeleteTrack)
}

// AuthMiddleware validates the static bearer token carried in the
// Authorization header. An empty configured token disables the check.
func AuthMiddleware(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:Authorization",
		AuthScheme: "Bearer",
		Skipper: func(c echo.Context) bool {
			return token == ""
		},
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
	})
}
