package server

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShutdownRunsClosersInReverseOrder(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig())

	var order []string
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "first")
		return nil
	}))
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "second")
		return nil
	}))
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "third")
		return nil
	}))

	if err := sm.Shutdown("test"); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("got %d closers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("closer %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestShutdownRunsOnce(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig())

	calls := 0
	sm.RegisterCloser(CloserFunc(func() error {
		calls++
		return nil
	}))

	if err := sm.Shutdown("first"); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := sm.Shutdown("second"); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}

	if calls != 1 {
		t.Errorf("closer ran %d times, want 1", calls)
	}
	if !sm.IsShuttingDown() {
		t.Error("IsShuttingDown = false after Shutdown")
	}
}

func TestShutdownReturnsFirstCloserError(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig())

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ranLast := false

	// Registered first, closed last.
	sm.RegisterCloser(CloserFunc(func() error {
		ranLast = true
		return errB
	}))
	sm.RegisterCloser(CloserFunc(func() error { return errA }))

	err := sm.Shutdown("test")
	if !errors.Is(err, errA) {
		t.Errorf("got %v, want %v", err, errA)
	}
	if !ranLast {
		t.Error("a failing closer stopped the remaining closers")
	}
}

func TestShutdownTimeout(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{ShutdownTimeout: 50 * time.Millisecond})

	block := make(chan struct{})
	defer close(block)
	sm.RegisterCloser(CloserFunc(func() error {
		<-block
		return nil
	}))

	err := sm.Shutdown("test")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want deadline exceeded", err)
	}
}

func TestShutdownChCloses(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig())

	select {
	case <-sm.ShutdownCh():
		t.Fatal("shutdown channel closed before Shutdown")
	default:
	}

	if err := sm.Shutdown("test"); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case <-sm.ShutdownCh():
	case <-time.After(time.Second):
		t.Fatal("shutdown channel not closed after Shutdown")
	}
}

func TestListenForSignalsReturnsOnContextCancel(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sm.ListenForSignals(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenForSignals: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ListenForSignals did not return after cancel")
	}

	if !sm.IsShuttingDown() {
		t.Error("cancel did not initiate shutdown")
	}
}

func TestListenForSignalsReturnsWhenShutdownElsewhere(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig())

	done := make(chan error, 1)
	go func() { done <- sm.ListenForSignals(context.Background()) }()

	// Give the listener a moment to park, then trigger shutdown from the
	// other side, as the app does when the cycle loop exits on its own.
	time.Sleep(10 * time.Millisecond)
	if err := sm.Shutdown("loop exited"); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenForSignals: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ListenForSignals did not return after external shutdown")
	}
}
