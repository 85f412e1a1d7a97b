package playback

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopStopped is returned by [Loop.Do] once the loop has exited.
var ErrLoopStopped = errors.New("playback loop stopped")

// Loop is a serialized executor used as the controlling context when no UI
// event loop is available. Pass [Loop.Dispatch] to [WithDispatcher] and route
// every transport call through [Loop.Do].
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop; call [Loop.Run] to start it.
func NewLoop() *Loop {
	return &Loop{tasks: make(chan func(), 64), quit: make(chan struct{})}
}

// Dispatch queues fn. It is dropped if the loop has stopped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.quit:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Dispatch(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrLoopStopped
	}
}

// Run executes queued functions until ctx ends or [Loop.Stop] is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop ends [Loop.Run]. Safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
}

// Stopped is closed once the loop has exited.
func (l *Loop) Stopped() <-chan struct{} { return l.quit }
