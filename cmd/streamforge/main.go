// Package main implements the streamforge daemon binary.
// The daemon continuously generates synthetic clickstream events and orders
// and streams them into the configured sink at a fixed cadence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/streamforge/streamforge/internal/app"
	"github.com/streamforge/streamforge/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

// cliFlags holds the command line overrides.
type cliFlags struct {
	configFile  string
	dataDir     string
	driver      string
	endpoint    string
	addr        string
	database    string
	interval    time.Duration
	eventBatch  int
	orderBatch  int
	workers     int
	maxCycles   int
	metricsAddr string
	logLevel    string
	showVersion bool
	showHelp    bool
}

func main() {
	f := parseFlags()

	if f.showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if f.showVersion {
		fmt.Printf("streamforge version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// A .env file is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	configureLogging(cfg.Log.Level)
	printBanner(cfg)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	if err := application.WaitForShutdown(ctx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	}

	if err := application.LoopErr(); err != nil {
		log.Errorf("Streaming loop failed: %v", err)
		os.Exit(1)
	}

	log.Info("streamforge stopped")
}

func parseFlags() cliFlags {
	var f cliFlags

	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&f.dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&f.driver, "driver", "", "Sink driver: http, native, sqlite")
	flag.StringVar(&f.endpoint, "endpoint", "", "Sink HTTP endpoint URL (http driver)")
	flag.StringVar(&f.addr, "addr", "", "Sink native protocol address (native driver)")
	flag.StringVar(&f.database, "database", "", "Target database name")
	flag.DurationVar(&f.interval, "interval", 0, "Cycle interval (e.g. 1s, 500ms)")
	flag.IntVar(&f.eventBatch, "events", 0, "Events generated per cycle")
	flag.IntVar(&f.orderBatch, "orders", 0, "Orders generated per cycle")
	flag.IntVar(&f.workers, "workers", 0, "Insert worker pool size")
	flag.IntVar(&f.maxCycles, "max-cycles", 0, "Stop after N cycles (0 runs until signalled)")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.showVersion, "version", false, "Show version information")
	flag.BoolVar(&f.showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Streamforge - Continuous Synthetic Data Streaming\n\n")
		fmt.Fprintf(os.Stderr, "Usage: streamforge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  streamforge --endpoint http://localhost:8123 --database ecommerce\n")
		fmt.Fprintf(os.Stderr, "  streamforge --driver native --addr localhost:9000 --interval 500ms\n")
		fmt.Fprintf(os.Stderr, "  streamforge --config /etc/streamforge/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  STREAMFORGE_SINK_DRIVER       Sink driver (http, native, sqlite)\n")
		fmt.Fprintf(os.Stderr, "  STREAMFORGE_SINK_ENDPOINT     Sink HTTP endpoint URL\n")
		fmt.Fprintf(os.Stderr, "  STREAMFORGE_SINK_PASSWORD     Sink password\n")
		fmt.Fprintf(os.Stderr, "  STREAMFORGE_STREAM_*          Cadence, batch sizes, workers\n")
		fmt.Fprintf(os.Stderr, "  STREAMFORGE_SPILL_*           Failed-batch archive settings\n")
		fmt.Fprintf(os.Stderr, "  STREAMFORGE_METRICS_ADDR      Metrics listen address\n")
	}

	flag.Parse()
	return f
}

// loadConfig layers configuration: file or defaults, then environment
// variables, then command line flags.
func loadConfig(f cliFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if f.configFile != "" {
		cfg, err = config.LoadFromFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.driver != "" {
		cfg.Sink.Driver = f.driver
	}
	if f.endpoint != "" {
		cfg.Sink.Endpoint = f.endpoint
	}
	if f.addr != "" {
		cfg.Sink.Addr = f.addr
	}
	if f.database != "" {
		cfg.Sink.Database = f.database
	}
	if f.interval > 0 {
		cfg.Stream.CycleInterval = f.interval
	}
	if f.eventBatch > 0 {
		cfg.Stream.EventBatchSize = f.eventBatch
	}
	if f.orderBatch > 0 {
		cfg.Stream.OrderBatchSize = f.orderBatch
	}
	if f.workers > 0 {
		cfg.Stream.WorkerCount = f.workers
	}
	if f.maxCycles > 0 {
		cfg.Stream.MaxCycles = f.maxCycles
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	cfg.Resolve()
	return cfg, nil
}

func configureLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Info("╔═══════════════════════════════════════════════════════════╗")
	log.Info("║                      STREAMFORGE                          ║")
	log.Info("║        Continuous Synthetic Data Streaming Daemon         ║")
	log.Info("╚═══════════════════════════════════════════════════════════╝")
	log.Info("")
	log.Info("Configuration:")
	log.Infof("  Sink:     %s", sinkTarget(cfg))
	log.Infof("  Database: %s", cfg.Sink.Database)
	log.Infof("  Cadence:  %v (%d events + %d orders per cycle, %d workers)",
		cfg.Stream.CycleInterval, cfg.Stream.EventBatchSize,
		cfg.Stream.OrderBatchSize, cfg.Stream.WorkerCount)
	if cfg.Stream.MaxCycles > 0 {
		log.Infof("  Cycles:   %d", cfg.Stream.MaxCycles)
	}
	if cfg.Spill.Enabled {
		log.Infof("  Spill:    %s", cfg.Spill.Store)
	}
	if cfg.Metrics.Addr != "" {
		log.Infof("  Metrics:  %s", cfg.Metrics.Addr)
	}
	log.Info("")
}

func sinkTarget(cfg *config.Config) string {
	switch cfg.Sink.Driver {
	case "http":
		return fmt.Sprintf("http (%s)", cfg.Sink.Endpoint)
	case "native":
		return fmt.Sprintf("native (%s)", cfg.Sink.Addr)
	case "sqlite":
		return fmt.Sprintf("sqlite (%s)", cfg.Sink.Path)
	default:
		return cfg.Sink.Driver
	}
}
