package stream

import (
	"fmt"
	"sync"

	"github.com/streamforge/streamforge/internal/errors"
)

// Pool runs submitted tasks on a fixed set of workers. Submit blocks while
// every worker is busy, so at most workers tasks are in flight at once.
type Pool struct {
	tasks     chan *Task
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Task is one submitted unit of work. Wait delivers its result.
type Task struct {
	run  func() error
	done chan struct{}
	err  error
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int) *Pool {
	p := &Pool{tasks: make(chan *Task)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.err = runTask(t)
		close(t.done)
	}
}

// runTask converts a panicking task into an internal error instead of
// killing the worker and deadlocking its waiter.
func runTask(t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(fmt.Sprintf("task panicked: %v", r), nil)
		}
	}()
	return t.run()
}

// Submit queues fn and returns a handle for joining it. It must not be
// called after Close.
func (p *Pool) Submit(fn func() error) *Task {
	t := &Task{run: fn, done: make(chan struct{})}
	p.tasks <- t
	return t
}

// Wait blocks until the task finishes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Close stops accepting tasks and waits for in-flight work to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
