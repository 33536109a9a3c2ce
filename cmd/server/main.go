package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ryoqn/trackdata-serverless/internal/api"
	"github.com/ryoqn/trackdata-serverless/internal/config"
	"github.com/ryoqn/trackdata-serverless/internal/ingest"
	"github.com/ryoqn/trackdata-serverless/internal/logging"
	"github.com/ryoqn/trackdata-serverless/internal/store"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("TRACKER_CONFIG"), "path to YAML config file")
	flag.Parse()

	log, err := logging.NewLogger("trackdata")
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	client, err := newDynamoClient(context.Background(), cfg)
	if err != nil {
		log.Fatal("failed to initialize DynamoDB client", zap.Error(err))
	}

	gateway := store.NewGateway(client, log)
	fetcher := ingest.NewFetcher(&http.Client{Timeout: 30 * time.Second})
	service := ingest.NewService(fetcher, gateway, cfg.Tables.Gps, cfg.Tables.Setting, log)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("request_id", v.RequestID))
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	handlers := api.NewHandlers(&api.Dependencies{
		Processor: service,
		Store:     gateway,
		GpsTable:  cfg.Tables.Gps,
		AuthToken: cfg.Auth.Token,
		Version:   Version,
		Log:       log,
	})
	api.RegisterRoutes(e, handlers, cfg.Auth.Token)

	s := &http.Server{
		Addr:         cfg.ServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	log.Info("server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("addr", cfg.ServerAddr()),
		zap.String("gps_table", cfg.Tables.Gps),
		zap.String("setting_table", cfg.Tables.Setting))
	if err := e.StartServer(s); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// newDynamoClient builds the shared DynamoDB client. When an endpoint
// override is configured the client targets a local DynamoDB with dummy
// credentials instead of the hosted service.
func newDynamoClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	if cfg.AWS.Endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("DUMMY", "DUMMY", "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	}), nil
}
