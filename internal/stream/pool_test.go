package stream

import (
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streamforge/streamforge/internal/errors"
)

func TestPoolRunsTasksConcurrently(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	// Task A finishes only after task B has started, so both must be
	// running at the same time.
	bStarted := make(chan struct{})

	a := p.Submit(func() error {
		<-bStarted
		return nil
	})
	b := p.Submit(func() error {
		close(bStarted)
		return nil
	})

	if err := a.Wait(); err != nil {
		t.Errorf("task a: %v", err)
	}
	if err := b.Wait(); err != nil {
		t.Errorf("task b: %v", err)
	}
}

func TestPoolWaitReturnsTaskError(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	want := stderrors.New("insert refused")
	task := p.Submit(func() error { return want })

	if got := task.Wait(); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPoolTaskPanicBecomesInternalError(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	task := p.Submit(func() error { panic("boom") })
	err := task.Wait()
	if err == nil {
		t.Fatal("expected error from panicking task")
	}
	if got := errors.GetCategory(err); got != errors.ErrCategoryInternal {
		t.Errorf("category = %q, want %q", got, errors.ErrCategoryInternal)
	}
	if got := errors.GetCode(err); got != errors.CodeUnexpected {
		t.Errorf("code = %q, want %q", got, errors.CodeUnexpected)
	}

	// The worker survived the panic.
	next := p.Submit(func() error { return nil })
	if err := next.Wait(); err != nil {
		t.Errorf("task after panic: %v", err)
	}
}

func TestPoolSubmitBlocksWhenSaturated(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	p.Submit(func() error {
		<-release
		return nil
	})

	submitted := make(chan *Task)
	go func() {
		submitted <- p.Submit(func() error { return nil })
	}()

	select {
	case <-submitted:
		t.Fatal("Submit returned while the only worker was busy")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	task := <-submitted
	if err := task.Wait(); err != nil {
		t.Errorf("queued task: %v", err)
	}
}

func TestPoolCloseWaitsForInFlight(t *testing.T) {
	p := NewPool(2)

	var finished atomic.Bool
	p.Submit(func() error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	p.Close()
	if !finished.Load() {
		t.Error("Close returned before the in-flight task finished")
	}
}
