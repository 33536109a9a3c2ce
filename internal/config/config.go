// Package config loads server settings from an optional YAML file with
// environment variable overrides. A .env file is honored when present so
// local runs match the deployed environment shape.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	AWS    AWSConfig    `yaml:"aws"`
	Tables TablesConfig `yaml:"tables"`
	Auth   AuthConfig   `yaml:"auth"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// AWSConfig contains DynamoDB client settings. Endpoint is set only when
// pointing at a local DynamoDB instead of the hosted service.
type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// TablesConfig names the uplink tables.
type TablesConfig struct {
	Gps     string `yaml:"gps"`
	Setting string `yaml:"setting"`
}

// AuthConfig contains the static webhook bearer token. An empty token
// disables the check (local development).
type AuthConfig struct {
	Token string `yaml:"token"`
}

// Load reads the YAML file at path (skipped when path is empty), then
// applies environment overrides.
func Load(path string) (*Config, error) {
	// Missing .env is fine; env vars may come from the runtime directly.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 60,
			BodyLimit:    "1M",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.AWS.Region = getEnv("AWS_REGION", cfg.AWS.Region)
	cfg.AWS.Endpoint = getEnv("DYNAMODB_ENDPOINT", cfg.AWS.Endpoint)
	cfg.Tables.Gps = getEnv("GPS_TABLENAME", cfg.Tables.Gps)
	cfg.Tables.Setting = getEnv("SETTING_TABLENAME", cfg.Tables.Setting)
	cfg.Auth.Token = getEnv("AUTH_TOKEN", cfg.Auth.Token)

	if cfg.Tables.Gps == "" {
		return nil, fmt.Errorf("GPS_TABLENAME is required but not set")
	}
	if cfg.Tables.Setting == "" {
		return nil, fmt.Errorf("SETTING_TABLENAME is required but not set")
	}
	return cfg, nil
}

// ServerAddr returns the listen address in host:port form.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
