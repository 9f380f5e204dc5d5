package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	envVars := []string{
		"FMCOPILOT_PORT", "FMCOPILOT_METRICS_PORT", "FMCOPILOT_ADMIN_TOKEN",
		"FMCOPILOT_DATABASE_URL", "FMCOPILOT_NATS_URL", "FMCOPILOT_REDIS_ADDR",
		"FMCOPILOT_REDIS_PASSWORD", "FMCOPILOT_CACHE_TTL_SECONDS",
		"FMCOPILOT_SYNC_SCHEDULE", "FMCOPILOT_CMMS_ORG_ID",
		"FMCOPILOT_FIIX_URL", "FMCOPILOT_FIIX_API_KEY",
		"FMCOPILOT_UPKEEP_URL", "FMCOPILOT_UPKEEP_TOKEN", "FMCOPILOT_LOG_LEVEL",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Events.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Events.URL)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("expected cache disabled by default, got addr %q", cfg.Redis.Addr)
	}
	if cfg.Redis.TTLSeconds != 3600 {
		t.Errorf("expected ttl 3600, got %d", cfg.Redis.TTLSeconds)
	}
	if cfg.CMMS.SyncSchedule != "" {
		t.Errorf("expected sync disabled by default, got %q", cfg.CMMS.SyncSchedule)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}

	tw := cfg.Scoring.TechnicianWeights
	techWeights := map[string]float64{
		"skills_match": tw.SkillsMatch, "location_proximity": tw.LocationProximity,
		"workload": tw.Workload, "availability": tw.Availability, "past_performance": tw.PastPerformance,
	}
	expectedTech := map[string]float64{
		"skills_match": 0.3, "location_proximity": 0.2,
		"workload": 0.2, "availability": 0.1, "past_performance": 0.2,
	}
	for name, want := range expectedTech {
		if math.Abs(techWeights[name]-want) > 0.001 {
			t.Errorf("technician weight %s: expected %v, got %v", name, want, techWeights[name])
		}
	}

	vw := cfg.Scoring.VendorWeights
	if vw.SpecialtyMatch != 0.3 || vw.CostRating != 0.2 || vw.ResponseTime != 0.2 || vw.Reliability != 0.3 {
		t.Errorf("unexpected vendor weight defaults: %+v", vw)
	}

	if err := cfg.TechnicianWeights().Validate(); err != nil {
		t.Errorf("default technician weights invalid: %v", err)
	}
	if err := cfg.VendorWeights().Validate(); err != nil {
		t.Errorf("default vendor weights invalid: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9100
  admin_token: secret
redis:
  addr: localhost:6379
  ttl_seconds: 120
cmms:
  sync_schedule: "*/15 * * * *"
  org_id: 7
  fiix:
    url: https://fiix.example.com
    api_key: abc
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "secret" {
		t.Errorf("expected admin token from file, got %q", cfg.Server.AdminToken)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTLSeconds != 120 {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.CMMS.SyncSchedule != "*/15 * * * *" || cfg.CMMS.OrgID != 7 {
		t.Errorf("unexpected cmms config: %+v", cfg.CMMS)
	}
	if cfg.CMMS.Fiix.URL != "https://fiix.example.com" {
		t.Errorf("unexpected fiix url: %q", cfg.CMMS.Fiix.URL)
	}

	// Unspecified sections keep their defaults.
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port, got %d", cfg.Server.MetricsPort)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FMCOPILOT_PORT", "9999")
	t.Setenv("FMCOPILOT_DATABASE_URL", "postgres://test")
	t.Setenv("FMCOPILOT_REDIS_ADDR", "redis:6379")
	t.Setenv("FMCOPILOT_SYNC_SCHEDULE", "0 * * * *")
	t.Setenv("FMCOPILOT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected env port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://test" {
		t.Errorf("expected env database URL, got %q", cfg.Database.URL)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("expected env redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.CMMS.SyncSchedule != "0 * * * *" {
		t.Errorf("expected env sync schedule, got %q", cfg.CMMS.SyncSchedule)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level, got %q", cfg.Logging.Level)
	}
}
