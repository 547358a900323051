// Package app wires the pipeline together and manages its lifecycle.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/streamforge/streamforge/internal/config"
	"github.com/streamforge/streamforge/internal/errors"
	"github.com/streamforge/streamforge/internal/gen"
	"github.com/streamforge/streamforge/internal/observability"
	"github.com/streamforge/streamforge/internal/server"
	"github.com/streamforge/streamforge/internal/sink"
	"github.com/streamforge/streamforge/internal/spill"
	"github.com/streamforge/streamforge/internal/storage"
	"github.com/streamforge/streamforge/internal/stream"
)

// App owns the daemon: the sink connection, the cycle loop, the optional
// spill store and metrics listener, and their shutdown ordering.
type App struct {
	cfg   *config.Config
	runID string

	// Shared resources
	sink          sink.Sink
	store         storage.ObjectStorage
	archiver      *spill.Archiver
	metrics       *observability.Metrics
	metricsServer *observability.Server
	streamer      *stream.Streamer
	shutdown      *server.ShutdownManager

	// Lifecycle
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	loopErr error
}

// New creates an App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{
		cfg:      cfg,
		runID:    uuid.NewString(),
		shutdown: server.NewShutdownManager(server.DefaultShutdownConfig()),
	}, nil
}

// Start verifies the sink, checks the seeded populations, and launches the
// cycle loop. It returns once the loop is running.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.initSharedResources(ctx); err != nil {
		a.cleanup()
		return err
	}

	a.startStreaming(ctx)

	log.Infof("streamforge started: run %s, %s sink, %d workers, %s interval",
		a.runID, a.cfg.Sink.Driver, a.cfg.Stream.WorkerCount, a.cfg.Stream.CycleInterval)
	return nil
}

// initSharedResources opens the sink, validates preconditions, and builds
// the loop's collaborators. Closers register in dependency order so the
// loop stops first and the sink closes last.
func (a *App) initSharedResources(ctx context.Context) error {
	s, err := sink.Open(ctx, a.cfg.Sink)
	if err != nil {
		return fmt.Errorf("failed to open sink: %w", err)
	}
	a.sink = s
	a.shutdown.RegisterCloser(server.CloserFunc(a.sink.Close))

	if err := a.sink.Ping(ctx); err != nil {
		return fmt.Errorf("sink connection test failed: %w", err)
	}
	log.Infof("connected to %s sink", a.cfg.Sink.Driver)

	// Both dimensions must be seeded before streaming can start; ids for
	// user and product references are sampled from 1..count.
	alloc := stream.NewAllocator(a.sink)
	userCount := alloc.Count(ctx, "users")
	productCount := alloc.Count(ctx, "products")
	if userCount == 0 || productCount == 0 {
		return errors.NewConfigError(errors.CodeEmptyPopulation,
			"no users or products found, run streamforge-seed first")
	}
	log.Infof("found %d users and %d products", userCount, productCount)

	a.metrics = observability.NewMetrics()
	if a.cfg.Metrics.Addr != "" {
		a.metricsServer = observability.NewServer(a.cfg.Metrics.Addr, a.metrics)
		a.metricsServer.Start()
		a.shutdown.RegisterCloser(server.CloserFunc(a.metricsServer.Close))
	}

	if a.cfg.Spill.Enabled {
		if err := a.initSpill(ctx); err != nil {
			return err
		}
	}

	seed := time.Now().UnixNano()
	events := gen.NewEventGenerator(a.cfg.Stream.EventBatchSize, int(userCount),
		rand.New(rand.NewSource(seed)))
	orders := gen.NewOrderGenerator(a.cfg.Stream.OrderBatchSize, int(userCount),
		int(productCount), rand.New(rand.NewSource(seed+1)))

	a.streamer = stream.NewStreamer(a.cfg.Stream, a.sink, events, orders, a.metrics, a.archiver)
	return nil
}

// initSpill builds the object store behind the spill archiver.
func (a *App) initSpill(ctx context.Context) error {
	var err error
	switch a.cfg.Spill.Store {
	case "local":
		a.store, err = storage.NewLocalStorage(a.cfg.Spill.Dir)
	case "s3":
		a.store, err = storage.NewS3Storage(ctx, a.cfg.Spill.S3.Bucket, storage.S3Config{
			Region:       a.cfg.Spill.S3.Region,
			Endpoint:     a.cfg.Spill.S3.Endpoint,
			UsePathStyle: a.cfg.Spill.S3.Endpoint != "",
		})
	default:
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unsupported spill store: %s", a.cfg.Spill.Store))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize spill storage: %w", err)
	}

	a.archiver = spill.NewArchiver(a.store)
	log.Infof("spill storage initialized: %s", a.cfg.Spill.Store)
	return nil
}

// startStreaming runs the cycle loop in the background. When the loop
// exits on its own (cycle limit or internal fault), it triggers shutdown
// so WaitForShutdown unblocks.
func (a *App) startStreaming(ctx context.Context) {
	// Registered after the sink, so shutdown stops the loop first and the
	// final stats flush still has a live sink to query.
	a.shutdown.RegisterCloser(server.CloserFunc(func() error {
		a.cancel()
		a.wg.Wait()
		return nil
	}))

	a.wg.Add(1)
	go func() {
		err := a.streamer.Run(ctx)

		a.mu.Lock()
		a.loopErr = err
		a.mu.Unlock()

		// Done must precede Shutdown: the loop closer waits on this
		// WaitGroup from inside the shutdown sequence.
		a.wg.Done()

		if err != nil {
			a.shutdown.Shutdown("streaming loop failed: " + err.Error())
		} else {
			a.shutdown.Shutdown("streaming loop finished")
		}
	}()
}

// WaitForShutdown blocks until a signal arrives or the loop exits, then
// completes the shutdown sequence.
func (a *App) WaitForShutdown(ctx context.Context) error {
	err := a.shutdown.ListenForSignals(ctx)

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	return err
}

// Stop shuts the app down explicitly. Safe to call concurrently with
// signal-driven shutdown; whichever comes first wins.
func (a *App) Stop() error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	return a.shutdown.Shutdown("stop requested")
}

// LoopErr reports why the cycle loop exited, nil for a clean stop.
func (a *App) LoopErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loopErr
}

// cleanup releases resources after a failed start.
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.metricsServer != nil {
		a.metricsServer.Close()
	}
	if a.sink != nil {
		a.sink.Close()
	}

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}
