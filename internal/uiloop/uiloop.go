// Package uiloop is the single-threaded context that owns window and
// scheduler state. Other goroutines hand work to it with Post.
package uiloop

import (
	"context"
	"sync"
	"time"
)

// Timer is a pending AfterFunc.
type Timer interface {
	// Stop prevents the function from being posted. It returns false when
	// the timer already fired or was stopped.
	Stop() bool
}

// Loop is an unbounded FIFO of tasks drained by exactly one goroutine,
// either through Run or by repeatedly calling Next.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It never blocks and is safe from any goroutine.
// Tasks posted after Stop are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc posts fn once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Stop ends draining. Queued tasks that have not started are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.done)
}

// Done is closed by Stop.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Next blocks until a task is available and returns it without running it.
// ok is false once the loop is stopped or ctx ends.
func (l *Loop) Next(ctx context.Context) (fn func(), ok bool) {
	for {
		if fn, ok := l.pop(); ok {
			return fn, true
		}
		select {
		case <-l.wake:
		case <-l.done:
			return nil, false
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Run drains the loop on the calling goroutine until Stop or ctx ends.
func (l *Loop) Run(ctx context.Context) {
	for {
		fn, ok := l.Next(ctx)
		if !ok {
			return
		}
		fn()
	}
}
