package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	APIBaseURL string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:3333"`
	APITimeout time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"0s"`

	SnapshotBackend string `env:"CART_SNAPSHOT_BACKEND" envDefault:"sqlite"`
	SnapshotKey     string `env:"CART_SNAPSHOT_KEY" envDefault:"@RocketShoes:cart"`
	SQLitePath      string `env:"CART_SQLITE_PATH" envDefault:"cart.db"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	StockReportConcurrency int `env:"STOCK_REPORT_CONCURRENCY" envDefault:"10"`

	TraceExporter string `env:"TRACE_EXPORTER" envDefault:"none"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`

	HTTPPort    int    `env:"HTTP_PORT" envDefault:"3333"`
	FixturePath string `env:"FAKEAPI_FIXTURE" envDefault:"cmd/fakeapi/server.json"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.SnapshotBackend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("CART_SNAPSHOT_BACKEND: unknown backend %q", c.SnapshotBackend)
	}
	switch c.TraceExporter {
	case ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		return fmt.Errorf("TRACE_EXPORTER: unknown exporter %q", c.TraceExporter)
	}
	if c.SnapshotKey == "" {
		return fmt.Errorf("CART_SNAPSHOT_KEY must not be empty")
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("STOREFRONT_API_TIMEOUT must not be negative")
	}
	return nil
}
