package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  bindAddress: 127.0.0.1
aws:
  region: ap-northeast-1
tables:
  gps: prod-GpsData
  setting: prod-SettingData
auth:
  token: secret-token
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if got := cfg.ServerAddr(); got != "127.0.0.1:9090" {
		t.Errorf("expected addr 127.0.0.1:9090, got %s", got)
	}
	if cfg.AWS.Region != "ap-northeast-1" {
		t.Errorf("expected region ap-northeast-1, got %s", cfg.AWS.Region)
	}
	if cfg.Tables.Gps != "prod-GpsData" || cfg.Tables.Setting != "prod-SettingData" {
		t.Errorf("unexpected tables: %+v", cfg.Tables)
	}
	if cfg.Auth.Token != "secret-token" {
		t.Errorf("expected auth token, got %q", cfg.Auth.Token)
	}
	// YAML-omitted fields keep their defaults.
	if cfg.Server.ReadTimeout != 30 || cfg.Server.WriteTimeout != 60 {
		t.Errorf("expected default timeouts, got %+v", cfg.Server)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeConfigFile(t, `
tables:
  gps: yaml-GpsData
  setting: yaml-SettingData
`)
	t.Setenv("PORT", "3000")
	t.Setenv("GPS_TABLENAME", "env-GpsData")
	t.Setenv("DYNAMODB_ENDPOINT", "http://localhost:8000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected env port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Tables.Gps != "env-GpsData" {
		t.Errorf("expected env table name, got %s", cfg.Tables.Gps)
	}
	if cfg.Tables.Setting != "yaml-SettingData" {
		t.Errorf("expected yaml table name to survive, got %s", cfg.Tables.Setting)
	}
	if cfg.AWS.Endpoint != "http://localhost:8000" {
		t.Errorf("expected local endpoint, got %s", cfg.AWS.Endpoint)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("GPS_TABLENAME", "env-GpsData")
	t.Setenv("SETTING_TABLENAME", "env-SettingData")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Tables.Gps != "env-GpsData" {
		t.Errorf("expected env table name, got %s", cfg.Tables.Gps)
	}
}

func TestLoadMissingTables(t *testing.T) {
	t.Setenv("GPS_TABLENAME", "")
	t.Setenv("SETTING_TABLENAME", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing table names, got nil")
	}
}

func TestLoadBadFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}

	path := writeConfigFile(t, "tables: [not, a, mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml, got nil")
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	if got := getEnvAsInt("PORT", 8080); got != 8080 {
		t.Errorf("expected fallback 8080, got %d", got)
	}
}
