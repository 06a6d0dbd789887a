package platform

import (
	"context"
	"fmt"
	"runtime"
)

// Executor serializes closures onto a single OS thread. Every accessibility
// call, input-event post, and screen-capture invocation the real darwin
// adapters make is submitted through it, because those APIs require
// main-thread affinity — the OS observes them as coming from one thread or
// rejects them outright. Handlers submit and block for the result; the
// executor itself never blocks arbitrarily (per §5, suspension points are
// enumerated at the handler level, not hidden inside the executor).
type Executor interface {
	// Submit runs fn on the executor's thread and returns its result. Safe
	// to call concurrently from many goroutines; calls are served in the
	// order they arrive.
	Submit(ctx context.Context, fn func() (any, error)) (any, error)
	// Close stops the executor's thread. Submit after Close returns an error.
	Close()
}

type job struct {
	fn     func() (any, error)
	result chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// mainThreadExecutor runs a single goroutine pinned to an OS thread with
// runtime.LockOSThread, draining a work queue in FIFO order.
type mainThreadExecutor struct {
	jobs   chan job
	closed chan struct{}
}

// NewMainThreadExecutor starts the executor's dedicated thread.
func NewMainThreadExecutor() Executor {
	e := &mainThreadExecutor{
		jobs:   make(chan job, 64),
		closed: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *mainThreadExecutor) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case j, ok := <-e.jobs:
			if !ok {
				return
			}
			value, err := j.fn()
			j.result <- jobResult{value: value, err: err}
		case <-e.closed:
			return
		}
	}
}

func (e *mainThreadExecutor) Submit(ctx context.Context, fn func() (any, error)) (any, error) {
	j := job{fn: fn, result: make(chan jobResult, 1)}

	select {
	case <-e.closed:
		return nil, fmt.Errorf("platform: executor is closed")
	default:
	}

	select {
	case e.jobs <- j:
	case <-e.closed:
		return nil, fmt.Errorf("platform: executor is closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-j.result:
		return r.value, r.err
	case <-e.closed:
		return nil, fmt.Errorf("platform: executor is closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *mainThreadExecutor) Close() {
	select {
	case <-e.closed:
	default:
		close(e.closed)
	}
}
