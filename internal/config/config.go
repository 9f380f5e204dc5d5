package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philiplawlor/fm-copilot/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	CMMS     CMMSConfig     `yaml:"cmms"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig controls the optional recommendation cache. An empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type CMMSConfig struct {
	// SyncSchedule is a standard 5-field cron expression; empty disables
	// the background sync.
	SyncSchedule string       `yaml:"sync_schedule"`
	OrgID        int64        `yaml:"org_id"`
	Fiix         FiixConfig   `yaml:"fiix"`
	UpKeep       UpKeepConfig `yaml:"upkeep"`
}

type FiixConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type UpKeepConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type ScoringConfig struct {
	TechnicianWeights TechnicianWeights `yaml:"technician_weights"`
	VendorWeights     VendorWeights     `yaml:"vendor_weights"`
}

type TechnicianWeights struct {
	SkillsMatch       float64 `yaml:"skills_match"`
	LocationProximity float64 `yaml:"location_proximity"`
	Workload          float64 `yaml:"workload"`
	Availability      float64 `yaml:"availability"`
	PastPerformance   float64 `yaml:"past_performance"`
}

type VendorWeights struct {
	SpecialtyMatch float64 `yaml:"specialty_match"`
	CostRating     float64 `yaml:"cost_rating"`
	ResponseTime   float64 `yaml:"response_time"`
	Reliability    float64 `yaml:"reliability"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

func (c *Config) TechnicianWeights() scoring.TechnicianWeights {
	return scoring.TechnicianWeights{
		SkillsMatch:       c.Scoring.TechnicianWeights.SkillsMatch,
		LocationProximity: c.Scoring.TechnicianWeights.LocationProximity,
		Workload:          c.Scoring.TechnicianWeights.Workload,
		Availability:      c.Scoring.TechnicianWeights.Availability,
		PastPerformance:   c.Scoring.TechnicianWeights.PastPerformance,
	}
}

func (c *Config) VendorWeights() scoring.VendorWeights {
	return scoring.VendorWeights{
		SpecialtyMatch: c.Scoring.VendorWeights.SpecialtyMatch,
		CostRating:     c.Scoring.VendorWeights.CostRating,
		ResponseTime:   c.Scoring.VendorWeights.ResponseTime,
		Reliability:    c.Scoring.VendorWeights.Reliability,
	}
}

func Load(path string) (*Config, error) {
	tw := scoring.DefaultTechnicianWeights()
	vw := scoring.DefaultVendorWeights()

	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Redis: RedisConfig{
			TTLSeconds: 3600,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		CMMS: CMMSConfig{
			OrgID: 1,
		},
		Scoring: ScoringConfig{
			TechnicianWeights: TechnicianWeights{
				SkillsMatch:       tw.SkillsMatch,
				LocationProximity: tw.LocationProximity,
				Workload:          tw.Workload,
				Availability:      tw.Availability,
				PastPerformance:   tw.PastPerformance,
			},
			VendorWeights: VendorWeights{
				SpecialtyMatch: vw.SpecialtyMatch,
				CostRating:     vw.CostRating,
				ResponseTime:   vw.ResponseTime,
				Reliability:    vw.Reliability,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FMCOPILOT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FMCOPILOT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FMCOPILOT_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FMCOPILOT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FMCOPILOT_NATS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("FMCOPILOT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("FMCOPILOT_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FMCOPILOT_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.TTLSeconds = n
		}
	}
	if v := os.Getenv("FMCOPILOT_SYNC_SCHEDULE"); v != "" {
		cfg.CMMS.SyncSchedule = v
	}
	if v := os.Getenv("FMCOPILOT_CMMS_ORG_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.CMMS.OrgID = n
		}
	}
	if v := os.Getenv("FMCOPILOT_FIIX_URL"); v != "" {
		cfg.CMMS.Fiix.URL = v
	}
	if v := os.Getenv("FMCOPILOT_FIIX_API_KEY"); v != "" {
		cfg.CMMS.Fiix.APIKey = v
	}
	if v := os.Getenv("FMCOPILOT_UPKEEP_URL"); v != "" {
		cfg.CMMS.UpKeep.URL = v
	}
	if v := os.Getenv("FMCOPILOT_UPKEEP_TOKEN"); v != "" {
		cfg.CMMS.UpKeep.Token = v
	}
	if v := os.Getenv("FMCOPILOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
