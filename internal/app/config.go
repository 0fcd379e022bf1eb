package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/sessioncache/internal/data/store"
	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/envutil"
	"github.com/yungbote/sessioncache/internal/platform/logger"
	"github.com/yungbote/sessioncache/internal/services"
)

const configFileEnv = "SNAPSHOTDEMO_CONFIG"

type SequenceDriver string

const (
	SequenceMemory SequenceDriver = "memory"
	SequenceRedis  SequenceDriver = "redis"
)

type Config struct {
	LogMode  string
	HTTPAddr string

	CachePolicy             uow.Policy
	SnapshotStrategy        services.Strategy
	RollbackOnlyOnJoinError bool

	StoreDriver    store.Driver
	SQLitePath     string
	PostgresDSN    string
	RedisAddr      string
	RedisPrefix    string
	SequenceDriver SequenceDriver
	SequenceStart  int64
	SeedDemoData   bool

	MetricsEnabled bool
	CORSOrigins    []string
	Otel           observability.OtelConfig
}

// fileConfig mirrors Config for the optional YAML overlay. Unset keys leave
// the env-derived value alone.
type fileConfig struct {
	LogMode                 string   `yaml:"log_mode"`
	HTTPAddr                string   `yaml:"http_addr"`
	CachePolicy             string   `yaml:"cache_policy"`
	SnapshotStrategy        string   `yaml:"snapshot_strategy"`
	RollbackOnlyOnJoinError *bool    `yaml:"rollback_only_on_join_error"`
	StoreDriver             string   `yaml:"store_driver"`
	SQLitePath              string   `yaml:"sqlite_path"`
	PostgresDSN             string   `yaml:"postgres_dsn"`
	RedisAddr               string   `yaml:"redis_addr"`
	RedisPrefix             string   `yaml:"redis_prefix"`
	SequenceDriver          string   `yaml:"sequence_driver"`
	SequenceStart           *int64   `yaml:"sequence_start"`
	SeedDemoData            *bool    `yaml:"seed_demo_data"`
	MetricsEnabled          *bool    `yaml:"metrics_enabled"`
	CORSOrigins             []string `yaml:"cors_origins"`
	Otel                    struct {
		Enabled     *bool    `yaml:"enabled"`
		ServiceName string   `yaml:"service_name"`
		Endpoint    string   `yaml:"endpoint"`
		Insecure    *bool    `yaml:"insecure"`
		SampleRatio *float64 `yaml:"sample_ratio"`
	} `yaml:"otel"`
}

// LoadConfig reads the environment, overlays the YAML file named by
// SNAPSHOTDEMO_CONFIG when set, and validates the result.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		LogMode:                 envutil.String("LOG_MODE", "development", log),
		HTTPAddr:                envutil.String("HTTP_ADDR", ":8081", log),
		CachePolicy:             uow.Policy(strings.ToLower(envutil.String("CACHE_POLICY", string(uow.DefaultPolicy), log))),
		SnapshotStrategy:        services.Strategy(strings.ToLower(envutil.String("SNAPSHOT_STRATEGY", string(services.DefaultStrategy), log))),
		RollbackOnlyOnJoinError: envutil.Bool("ROLLBACK_ONLY_ON_JOIN_ERROR", true, log),
		StoreDriver:             store.Driver(strings.ToLower(envutil.String("STORE_DRIVER", string(store.DriverMemory), log))),
		SQLitePath:              envutil.String("SQLITE_PATH", "sessioncache.db", log),
		PostgresDSN:             envutil.String("POSTGRES_DSN", "", log),
		RedisAddr:               envutil.String("REDIS_ADDR", "localhost:6379", log),
		RedisPrefix:             envutil.String("REDIS_PREFIX", "sessioncache", log),
		SequenceDriver:          SequenceDriver(strings.ToLower(envutil.String("SEQUENCE_DRIVER", string(SequenceMemory), log))),
		SequenceStart:           envutil.Int64("SEQUENCE_START", 10000, log),
		SeedDemoData:            envutil.Bool("SEED_DEMO_DATA", true, log),
		MetricsEnabled:          envutil.Bool("METRICS_ENABLED", false, log),
		CORSOrigins:             envutil.List("CORS_ORIGINS", nil),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "sessioncache", log),
			Environment: envutil.String("OTEL_ENVIRONMENT", "local", log),
			Version:     envutil.String("APP_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float64("OTEL_SAMPLER_RATIO", 0.1, log),
		},
	}

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
		log.Info("config file applied", "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.LogMode, fc.LogMode)
	setString(&c.HTTPAddr, fc.HTTPAddr)
	if fc.CachePolicy != "" {
		c.CachePolicy = uow.Policy(strings.ToLower(fc.CachePolicy))
	}
	if fc.SnapshotStrategy != "" {
		c.SnapshotStrategy = services.Strategy(strings.ToLower(fc.SnapshotStrategy))
	}
	setBool(&c.RollbackOnlyOnJoinError, fc.RollbackOnlyOnJoinError)
	if fc.StoreDriver != "" {
		c.StoreDriver = store.Driver(strings.ToLower(fc.StoreDriver))
	}
	setString(&c.SQLitePath, fc.SQLitePath)
	setString(&c.PostgresDSN, fc.PostgresDSN)
	setString(&c.RedisAddr, fc.RedisAddr)
	setString(&c.RedisPrefix, fc.RedisPrefix)
	if fc.SequenceDriver != "" {
		c.SequenceDriver = SequenceDriver(strings.ToLower(fc.SequenceDriver))
	}
	if fc.SequenceStart != nil {
		c.SequenceStart = *fc.SequenceStart
	}
	setBool(&c.SeedDemoData, fc.SeedDemoData)
	setBool(&c.MetricsEnabled, fc.MetricsEnabled)
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	setBool(&c.Otel.Enabled, fc.Otel.Enabled)
	setString(&c.Otel.ServiceName, fc.Otel.ServiceName)
	setString(&c.Otel.Endpoint, fc.Otel.Endpoint)
	setBool(&c.Otel.Insecure, fc.Otel.Insecure)
	if fc.Otel.SampleRatio != nil {
		c.Otel.SampleRatio = *fc.Otel.SampleRatio
	}
	return nil
}

func (c Config) Validate() error {
	var problems []error
	if !c.CachePolicy.Valid() {
		problems = append(problems, fmt.Errorf("cache policy %q (want copy|shared)", c.CachePolicy))
	}
	if !c.SnapshotStrategy.Valid() {
		problems = append(problems, fmt.Errorf("snapshot strategy %q (want in_place|clone)", c.SnapshotStrategy))
	}
	if _, err := store.ParseDriver(string(c.StoreDriver)); err != nil {
		problems = append(problems, err)
	}
	if c.StoreDriver == store.DriverPostgres && strings.TrimSpace(c.PostgresDSN) == "" {
		problems = append(problems, errors.New("POSTGRES_DSN is required for the postgres store"))
	}
	switch c.SequenceDriver {
	case SequenceMemory, SequenceRedis:
	default:
		problems = append(problems, fmt.Errorf("sequence driver %q (want memory|redis)", c.SequenceDriver))
	}
	if c.SequenceStart < 0 {
		problems = append(problems, fmt.Errorf("sequence start %d must not be negative", c.SequenceStart))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(problems...))
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
