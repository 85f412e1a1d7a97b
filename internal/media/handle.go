package media

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/gopxl/beep/v2"
)

// ErrClosed is returned by handle operations after Close.
var ErrClosed = errors.New("media handle closed")

// handle is one decoded file queued on the output.
//
// ctrl and stream are shared with the output's mixer goroutine and are only
// touched with the output locked.
type handle struct {
	out       Output
	stream    beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	seq       beep.Streamer
	callbacks playback.MediaCallbacks
	interval  time.Duration
	logger    *log.Logger

	mu       sync.Mutex
	started  bool
	closed   atomic.Bool
	finished atomic.Bool
	stop     chan struct{}
}

var _ playback.MediaHandle = (*handle)(nil)

// Play hands the stream to the output and starts progress reporting.
// Calling it again resumes.
func (h *handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Load() {
		return ErrClosed
	}
	if h.started {
		return h.setPaused(false)
	}

	h.started = true
	h.out.Play(h.seq)
	go h.report()
	return nil
}

func (h *handle) Pause() error  { return h.setPaused(true) }
func (h *handle) Resume() error { return h.setPaused(false) }

func (h *handle) setPaused(paused bool) error {
	return h.locked(func() error {
		h.ctrl.Paused = paused
		return nil
	})
}

// Stop pauses and rewinds.
func (h *handle) Stop() error {
	return h.locked(func() error {
		h.ctrl.Paused = true
		if err := h.stream.Seek(0); err != nil {
			return fmt.Errorf("failed to rewind: %w", err)
		}
		return nil
	})
}

// Seek moves to pos, clamped to the stream.
func (h *handle) Seek(pos time.Duration) error {
	return h.locked(func() error {
		n := min(max(h.format.SampleRate.N(pos), 0), h.stream.Len())
		if err := h.stream.Seek(n); err != nil {
			return fmt.Errorf("failed to seek to %v: %w", pos, err)
		}
		return nil
	})
}

func (h *handle) Position() (d time.Duration) {
	h.locked(func() error {
		d = h.format.SampleRate.D(h.stream.Position())
		return nil
	})
	return d
}

func (h *handle) Duration() (d time.Duration) {
	h.locked(func() error {
		d = h.format.SampleRate.D(h.stream.Len())
		return nil
	})
	return d
}

// locked runs fn with the output locked, unless the handle is closed.
func (h *handle) locked(fn func() error) error {
	h.out.Lock()
	defer h.out.Unlock()
	if h.closed.Load() {
		return ErrClosed
	}
	return fn()
}

// Close detaches the stream from the mixer and releases the file. It does not
// wait for the progress goroutine, which may be blocked delivering a callback
// to the goroutine calling Close.
func (h *handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(h.stop)

	h.out.Lock()
	h.ctrl.Streamer = nil
	err := h.stream.Close()
	h.out.Unlock()

	if err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

// onEnd runs on the mixer goroutine with the output locked.
func (h *handle) onEnd() {
	if h.closed.Load() || !h.finished.CompareAndSwap(false, true) {
		return
	}
	if h.callbacks.OnFinished != nil {
		go h.callbacks.OnFinished()
	}
}

func (h *handle) report() {
	if h.callbacks.OnProgress == nil {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.finished.Load() {
			return
		}

		var paused bool
		var pos, length int
		if err := h.locked(func() error {
			paused = h.ctrl.Paused
			pos, length = h.stream.Position(), h.stream.Len()
			return nil
		}); err != nil {
			return
		}

		if !paused {
			h.callbacks.OnProgress(h.format.SampleRate.D(pos), h.format.SampleRate.D(length))
		}
	}
}
