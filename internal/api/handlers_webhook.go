// handlers_webhook.go - Uplink webhook handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ryoqn/trackdata-serverless/internal/ingest"
	"github.com/ryoqn/trackdata-serverless/internal/logging"
)

// WebhookHandlerImpl implements the WebhookHandler interface.
type WebhookHandlerImpl struct {
	processor UplinkProcessor
	log       *zap.Logger
}

// NewWebhookHandler creates a new webhook handler instance.
func NewWebhookHandler(processor UplinkProcessor, log *zap.Logger) WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandlerImpl{processor: processor, log: log}
}

// HandleWebhook ingests one uplink notification. Any failure is logged with
// full detail but answered with a generic 400; the sender cannot act on
// decode or storage specifics anyway.
func (h *WebhookHandlerImpl) HandleWebhook(c echo.Context) error {
	log := logging.WithRequestID(h.log, c.Response().Header().Get(echo.HeaderXRequestID))

	var req ingest.WebhookRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("webhook body rejected", zap.Error(err))
		return NewBadRequestError("webhook failed", nil)
	}

	res, err := h.processor.ProcessUplink(c.Request().Context(), req)
	if err != nil {
		log.Error("webhook failed",
			zap.String("uplink_id", req.UplinkID),
			zap.String("device_id", req.Device.DeviceID),
			zap.String("sensor_id", req.Device.SensorID),
			zap.Error(err))
		return NewBadRequestError("webhook failed", nil)
	}

	if res.NoOp {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "webhook succeeded (gps records is empty)",
		})
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "webhook succeeded",
	})
}
