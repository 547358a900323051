// Package main implements the streamforge-seed tool.
// The tool populates the users and products dimension tables that the
// streaming daemon samples references from. It is idempotent: existing
// rows are kept and each dimension is topped up to its target size.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/seed"
	"github.com/streamforge/streamforge/internal/sink"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		driver      string
		endpoint    string
		addr        string
		database    string
		users       int
		products    int
		logLevel    string
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&driver, "driver", "", "Sink driver: http, native, sqlite")
	flag.StringVar(&endpoint, "endpoint", "", "Sink HTTP endpoint URL (http driver)")
	flag.StringVar(&addr, "addr", "", "Sink native protocol address (native driver)")
	flag.StringVar(&database, "database", "", "Target database name")
	flag.IntVar(&users, "users", 0, "Target users population")
	flag.IntVar(&products, "products", 0, "Target products population")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("streamforge-seed version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if driver != "" {
		cfg.Sink.Driver = driver
	}
	if endpoint != "" {
		cfg.Sink.Endpoint = endpoint
	}
	if addr != "" {
		cfg.Sink.Addr = addr
	}
	if database != "" {
		cfg.Sink.Database = database
	}
	if users > 0 {
		cfg.Seed.Users = users
	}
	if products > 0 {
		cfg.Seed.Products = products
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log.Infof("Seeding %s sink with %d users and %d products...",
		cfg.Sink.Driver, cfg.Seed.Users, cfg.Seed.Products)

	s, err := sink.Open(ctx, cfg.Sink)
	if err != nil {
		log.Fatalf("Failed to open sink: %v", err)
	}
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		log.Fatalf("Sink connection test failed: %v", err)
	}

	start := time.Now()
	seeder := seed.NewSeeder(s, cfg.Seed)
	if err := seeder.Run(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Infof("Seeding completed in %s", time.Since(start).Round(time.Millisecond))
}
