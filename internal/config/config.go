// Package config provides unified configuration for the Streamforge binaries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the unified configuration for the daemon and the seed tool.
type Config struct {
	// DataDir is the base directory for local data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Stream configuration (cadence, batch sizes, workers)
	Stream StreamConfig `json:"stream" yaml:"stream"`

	// Sink configuration (destination store)
	Sink SinkConfig `json:"sink" yaml:"sink"`

	// Spill configuration (failed-batch archive)
	Spill SpillConfig `json:"spill" yaml:"spill"`

	// Metrics configuration (operational listener)
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Log configuration
	Log LogConfig `json:"log" yaml:"log"`

	// Seed configuration (dimension population targets)
	Seed SeedConfig `json:"seed" yaml:"seed"`
}

// StreamConfig holds the orchestrator tunables.
type StreamConfig struct {
	// CycleInterval is the target wall-clock duration between cycle starts
	CycleInterval time.Duration `json:"cycle_interval" yaml:"cycle_interval"`

	// EventBatchSize is the number of events generated per cycle
	EventBatchSize int `json:"event_batch_size" yaml:"event_batch_size"`

	// OrderBatchSize is the number of orders generated per cycle
	OrderBatchSize int `json:"order_batch_size" yaml:"order_batch_size"`

	// WorkerCount is the size of the bulk-write worker pool
	WorkerCount int `json:"worker_count" yaml:"worker_count"`

	// StatsReportInterval is the wall-clock interval between stats reports,
	// checked at cycle boundaries
	StatsReportInterval time.Duration `json:"stats_report_interval" yaml:"stats_report_interval"`

	// MaxCycles stops the loop after N cycles; 0 runs until signalled
	MaxCycles int `json:"max_cycles" yaml:"max_cycles"`
}

// SinkConfig holds the destination store configuration.
type SinkConfig struct {
	// Driver selects the sink implementation: http, native, sqlite
	Driver string `json:"driver" yaml:"driver"`

	// Endpoint is the HTTP interface URL (http driver)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Addr is the native protocol host:port (native driver)
	Addr string `json:"addr" yaml:"addr"`

	// Database is the target database name
	Database string `json:"database" yaml:"database"`

	// Username and Password authenticate against the sink
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`

	// Path is the database file path (sqlite driver)
	Path string `json:"path" yaml:"path"`

	// Timeout bounds every single sink call
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SpillConfig holds the failed-batch archive configuration.
type SpillConfig struct {
	// Enabled turns the archive on
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Store is the object store type: local, s3
	Store string `json:"store" yaml:"store"`

	// Dir is the local archive directory (local store)
	Dir string `json:"dir" yaml:"dir"`

	// S3 configuration (s3 store)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 object store configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// MetricsConfig holds the operational listener configuration.
type MetricsConfig struct {
	// Addr is the listen address for /metrics and /health; empty disables
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error
	Level string `json:"level" yaml:"level"`
}

// SeedConfig holds the dimension seeding targets.
type SeedConfig struct {
	// Users is the target users population
	Users int `json:"users" yaml:"users"`

	// Products is the target products population
	Products int `json:"products" yaml:"products"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/streamforge",
		Stream: StreamConfig{
			CycleInterval:       1 * time.Second,
			EventBatchSize:      100,
			OrderBatchSize:      20,
			WorkerCount:         4,
			StatsReportInterval: 10 * time.Second,
			MaxCycles:           0,
		},
		Sink: SinkConfig{
			Driver:   "http",
			Endpoint: "http://localhost:8123",
			Addr:     "localhost:9000",
			Database: "ecommerce",
			Username: "default",
			Password: "",
			Path:     "",
			Timeout:  10 * time.Second,
		},
		Spill: SpillConfig{
			Enabled: false,
			Store:   "local",
			Dir:     "",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
		Log: LogConfig{
			Level: "info",
		},
		Seed: SeedConfig{
			Users:    1000,
			Products: 500,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/streamforge"
	}

	// Resolve sqlite path
	if c.Sink.Path == "" {
		c.Sink.Path = filepath.Join(c.DataDir, "streamforge.db")
	}

	// Resolve spill archive path
	if c.Spill.Dir == "" {
		c.Spill.Dir = filepath.Join(c.DataDir, "spill")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Sink.Driver {
	case "http", "native", "sqlite":
		// Valid drivers
	default:
		return fmt.Errorf("invalid sink driver: %s (must be http, native, or sqlite)", c.Sink.Driver)
	}

	if c.Sink.Driver == "http" && c.Sink.Endpoint == "" {
		return fmt.Errorf("sink.endpoint is required when sink driver is http")
	}
	if c.Sink.Driver == "native" && c.Sink.Addr == "" {
		return fmt.Errorf("sink.addr is required when sink driver is native")
	}
	if c.Sink.Timeout <= 0 {
		return fmt.Errorf("sink.timeout must be positive, got %v", c.Sink.Timeout)
	}

	if c.Stream.CycleInterval <= 0 {
		return fmt.Errorf("stream.cycle_interval must be positive, got %v", c.Stream.CycleInterval)
	}
	if c.Stream.EventBatchSize <= 0 {
		return fmt.Errorf("stream.event_batch_size must be positive, got %d", c.Stream.EventBatchSize)
	}
	if c.Stream.OrderBatchSize <= 0 {
		return fmt.Errorf("stream.order_batch_size must be positive, got %d", c.Stream.OrderBatchSize)
	}
	if c.Stream.WorkerCount <= 0 {
		return fmt.Errorf("stream.worker_count must be positive, got %d", c.Stream.WorkerCount)
	}
	if c.Stream.StatsReportInterval <= 0 {
		return fmt.Errorf("stream.stats_report_interval must be positive, got %v", c.Stream.StatsReportInterval)
	}
	if c.Stream.MaxCycles < 0 {
		return fmt.Errorf("stream.max_cycles must not be negative, got %d", c.Stream.MaxCycles)
	}

	if c.Spill.Store != "local" && c.Spill.Store != "s3" {
		return fmt.Errorf("invalid spill store: %s (must be local or s3)", c.Spill.Store)
	}
	if c.Spill.Enabled && c.Spill.Store == "s3" && c.Spill.S3.Bucket == "" {
		return fmt.Errorf("spill.s3.bucket is required when spill store is s3")
	}

	if c.Seed.Users < 0 || c.Seed.Products < 0 {
		return fmt.Errorf("seed targets must not be negative")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the STREAMFORGE_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("STREAMFORGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Stream configuration
	if v := os.Getenv("STREAMFORGE_STREAM_CYCLE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stream.CycleInterval = d
		}
	}
	if v := os.Getenv("STREAMFORGE_STREAM_EVENT_BATCH_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Stream.EventBatchSize)
	}
	if v := os.Getenv("STREAMFORGE_STREAM_ORDER_BATCH_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Stream.OrderBatchSize)
	}
	if v := os.Getenv("STREAMFORGE_STREAM_WORKER_COUNT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Stream.WorkerCount)
	}
	if v := os.Getenv("STREAMFORGE_STREAM_STATS_REPORT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stream.StatsReportInterval = d
		}
	}
	if v := os.Getenv("STREAMFORGE_STREAM_MAX_CYCLES"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Stream.MaxCycles)
	}

	// Sink configuration
	if v := os.Getenv("STREAMFORGE_SINK_DRIVER"); v != "" {
		cfg.Sink.Driver = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_ENDPOINT"); v != "" {
		cfg.Sink.Endpoint = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_ADDR"); v != "" {
		cfg.Sink.Addr = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_DATABASE"); v != "" {
		cfg.Sink.Database = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_USERNAME"); v != "" {
		cfg.Sink.Username = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_PASSWORD"); v != "" {
		cfg.Sink.Password = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_PATH"); v != "" {
		cfg.Sink.Path = v
	}
	if v := os.Getenv("STREAMFORGE_SINK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sink.Timeout = d
		}
	}

	// Spill configuration
	if v := os.Getenv("STREAMFORGE_SPILL_ENABLED"); v != "" {
		cfg.Spill.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("STREAMFORGE_SPILL_STORE"); v != "" {
		cfg.Spill.Store = v
	}
	if v := os.Getenv("STREAMFORGE_SPILL_DIR"); v != "" {
		cfg.Spill.Dir = v
	}
	if v := os.Getenv("STREAMFORGE_SPILL_S3_BUCKET"); v != "" {
		cfg.Spill.S3.Bucket = v
	}
	if v := os.Getenv("STREAMFORGE_SPILL_S3_REGION"); v != "" {
		cfg.Spill.S3.Region = v
	}
	if v := os.Getenv("STREAMFORGE_SPILL_S3_ENDPOINT"); v != "" {
		cfg.Spill.S3.Endpoint = v
	}

	// Metrics configuration
	if v := os.Getenv("STREAMFORGE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	// Log configuration
	if v := os.Getenv("STREAMFORGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Seed configuration
	if v := os.Getenv("STREAMFORGE_SEED_USERS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Seed.Users)
	}
	if v := os.Getenv("STREAMFORGE_SEED_PRODUCTS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Seed.Products)
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Spill.Enabled && c.Spill.Store == "local" {
		dirs = append(dirs, c.Spill.Dir)
	}
	if c.Sink.Driver == "sqlite" {
		dirs = append(dirs, filepath.Dir(c.Sink.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
