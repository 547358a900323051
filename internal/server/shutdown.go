// Package server provides daemon lifecycle management including graceful
// shutdown on signals.
package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// ShutdownManager coordinates graceful shutdown: it listens for signals,
// runs registered closers in reverse order, and guarantees the sequence
// happens exactly once however shutdown is triggered.
type ShutdownManager struct {
	shutdownTimeout time.Duration

	shutdownCh     chan struct{}
	shutdownOnce   sync.Once
	isShuttingDown int32

	closers   []io.Closer
	closersMu sync.Mutex
}

// ShutdownConfig holds configuration for the shutdown manager.
type ShutdownConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds
	ShutdownTimeout time.Duration
}

// DefaultShutdownConfig returns the default shutdown configuration.
func DefaultShutdownConfig() ShutdownConfig {
	return ShutdownConfig{
		ShutdownTimeout: 30 * time.Second,
	}
}

// NewShutdownManager creates a new shutdown manager with the given configuration.
func NewShutdownManager(config ShutdownConfig) *ShutdownManager {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &ShutdownManager{
		shutdownTimeout: config.ShutdownTimeout,
		shutdownCh:      make(chan struct{}),
	}
}

// RegisterCloser adds a closer to be called during shutdown.
// Closers are called in reverse order of registration (LIFO).
func (sm *ShutdownManager) RegisterCloser(closer io.Closer) {
	sm.closersMu.Lock()
	defer sm.closersMu.Unlock()
	sm.closers = append(sm.closers, closer)
}

// ListenForSignals blocks until SIGTERM or SIGINT arrives, the context is
// cancelled, or shutdown is triggered from elsewhere, then runs shutdown.
func (sm *ShutdownManager) ListenForSignals(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		// A second signal skips the graceful path.
		go func() {
			s := <-sigCh
			log.Errorf("received second signal %s, forcing exit", s)
			os.Exit(1)
		}()
		return sm.Shutdown("received signal: " + sig.String())
	case <-ctx.Done():
		return sm.Shutdown("context cancelled")
	case <-sm.shutdownCh:
		return nil
	}
}

// Shutdown runs the closers in reverse registration order, at most once.
// The first closer error is returned; later closers still run. The whole
// sequence is bounded by the shutdown timeout, independent of any run
// context, so one hung closer cannot wedge the process.
func (sm *ShutdownManager) Shutdown(reason string) error {
	var shutdownErr error

	sm.shutdownOnce.Do(func() {
		atomic.StoreInt32(&sm.isShuttingDown, 1)
		close(sm.shutdownCh)

		log.Infof("shutting down: %s", reason)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), sm.shutdownTimeout)
		defer cancel()

		sm.closersMu.Lock()
		closers := sm.closers
		sm.closersMu.Unlock()

		var closerErr error
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := len(closers) - 1; i >= 0; i-- {
				if err := closers[i].Close(); err != nil {
					log.Errorf("shutdown closer failed: %v", err)
					if closerErr == nil {
						closerErr = err
					}
				}
			}
		}()

		select {
		case <-done:
			shutdownErr = closerErr
		case <-shutdownCtx.Done():
			log.Errorf("shutdown timed out after %s", sm.shutdownTimeout)
			shutdownErr = shutdownCtx.Err()
		}
	})

	return shutdownErr
}

// IsShuttingDown returns true if shutdown has been initiated.
func (sm *ShutdownManager) IsShuttingDown() bool {
	return atomic.LoadInt32(&sm.isShuttingDown) == 1
}

// ShutdownCh returns a channel that is closed when shutdown begins.
func (sm *ShutdownManager) ShutdownCh() <-chan struct{} {
	return sm.shutdownCh
}

// CloserFunc is an adapter to allow ordinary functions to be used as io.Closer.
type CloserFunc func() error

// Close calls the underlying function.
func (f CloserFunc) Close() error {
	return f()
}
