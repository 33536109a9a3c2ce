package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/ryoqn/trackdata-serverless/internal/models"
	"github.com/ryoqn/trackdata-serverless/internal/sensordata"
	"github.com/ryoqn/trackdata-serverless/internal/store"
)

// WebhookRequest mirrors the uplink notification body posted by the router
// network.
type WebhookRequest struct {
	UplinkID string `json:"uplink_id"`
	Date     string `json:"date"` // ISO-8601
	Device   struct {
		SensorID   string `json:"sensor_id"`
		SensorName string `json:"sensor_name"`
		DeviceID   string `json:"device_id"`
		Data       struct {
			URL           string `json:"url"`
			ContentLength int    `json:"contentLength"`
		} `json:"data"`
	} `json:"device"`
	Router struct {
		RouterID string `json:"router_id"`
	} `json:"router"`
}

// Validate checks the fields every ingestion needs before any network work.
func (r *WebhookRequest) Validate() error {
	switch {
	case r.UplinkID == "":
		return fmt.Errorf("uplink_id is required")
	case r.Date == "":
		return fmt.Errorf("date is required")
	case r.Device.DeviceID == "":
		return fmt.Errorf("device.device_id is required")
	case r.Router.RouterID == "":
		return fmt.Errorf("router.router_id is required")
	case r.Device.Data.URL == "":
		return fmt.Errorf("device.data.url is required")
	}
	return nil
}

// Writer is the slice of the store gateway the service needs.
type Writer interface {
	WriteAll(ctx context.Context, table string, items []types.WriteRequest) ([]store.BatchOutcome, error)
}

// Result summarizes one processed uplink.
type Result struct {
	SensorName string
	Records    int
	NoOp       bool // GPS uplink with zero records; nothing was written
	Outcomes   []store.BatchOutcome
}

// Service runs the ingestion path: fetch payload, decode, build write
// requests and submit them. All state is request-scoped.
type Service struct {
	fetcher      *Fetcher
	writer       Writer
	gpsTable     string
	settingTable string
	log          *zap.Logger
}

func NewService(fetcher *Fetcher, writer Writer, gpsTable, settingTable string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		fetcher:      fetcher,
		writer:       writer,
		gpsTable:     gpsTable,
		settingTable: settingTable,
		log:          log,
	}
}

// ProcessUplink handles one webhook notification. Decode errors are fatal
// for the whole request; no partial record set is persisted. An empty GPS
// uplink is a successful no-op.
func (s *Service) ProcessUplink(ctx context.Context, req WebhookRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	occurredAt, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", req.Date, err)
	}

	payload, err := s.fetcher.Fetch(ctx, req.Device.Data.URL, req.Device.Data.ContentLength)
	if err != nil {
		return nil, err
	}

	env := models.UplinkEnvelope{
		UplinkID:   req.UplinkID,
		OccurredAt: occurredAt,
		DeviceID:   req.Device.DeviceID,
		RouterID:   req.Router.RouterID,
		SensorType: models.SensorType(req.Device.SensorID),
	}
	rec, err := sensordata.Decode(env, payload)
	if err != nil {
		return nil, err
	}

	var table string
	var records int
	switch r := rec.(type) {
	case *models.GpsUplink:
		if len(r.Records) == 0 {
			s.log.Info("gps uplink has no records, skipping write",
				zap.String("uplink_id", env.UplinkID),
				zap.String("device_id", env.DeviceID))
			return &Result{SensorName: req.Device.SensorName, NoOp: true}, nil
		}
		table = s.gpsTable
		records = len(r.Records)
	case *models.SettingSnapshot:
		table = s.settingTable
		records = 1
	}

	outcomes, err := s.writer.WriteAll(ctx, table, store.BuildPutRequests(rec))
	if err != nil {
		return nil, err
	}

	s.log.Info("uplink stored",
		zap.String("sensor_name", req.Device.SensorName),
		zap.String("uplink_id", env.UplinkID),
		zap.String("device_id", env.DeviceID),
		zap.Int("records", records))
	return &Result{SensorName: req.Device.SensorName, Records: records, Outcomes: outcomes}, nil
}
