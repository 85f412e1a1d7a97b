package playback

import (
	"time"

	"github.com/desertthunder/phono/internal/models"
)

// MediaRef points at local media ready to be opened.
type MediaRef struct {
	Song   models.Song
	Path   string
	Remote bool // Path is a cached copy of a remote source
}

// MediaCallbacks are invoked from the backend's own goroutines.
type MediaCallbacks struct {
	OnProgress func(position, duration time.Duration)
	OnFinished func()
}

// MediaHandle is an open, playable stream. The session is its only owner.
type MediaHandle interface {
	Play() error
	Pause() error
	Resume() error
	// Stop pauses and rewinds to the start.
	Stop() error
	Seek(position time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	// Close releases the stream and stops further callbacks. One already in
	// flight may still arrive, so consumers must tolerate it.
	Close() error
}

// MediaBackend opens media handles.
type MediaBackend interface {
	Open(ref MediaRef, callbacks MediaCallbacks) (MediaHandle, error)
}

// Dispatcher runs fn on the session's controlling context.
type Dispatcher func(fn func())

// Immediate runs fn on the calling goroutine.
//
// Only safe when the backend never calls back concurrently with transport calls, as in tests.
func Immediate(fn func()) { fn() }
