package playback

import (
	"sync"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

// SubscriptionID identifies a listener registered with [Bus.Subscribe].
type SubscriptionID string

// StateEvent is published on every transition affecting the current song, playlist or queue.
type StateEvent struct {
	State    State
	Song     *models.Song     // nil when nothing is current
	Playlist *models.Playlist // nil when no playlist is loaded
	Progress float64          // 0 when nothing is playing
}

// ProgressEvent is published periodically while a track plays.
type ProgressEvent struct {
	Progress float64
}

// Listener receives bus events.
type Listener interface {
	OnState(StateEvent)
	OnProgress(ProgressEvent)
}

// ListenerFuncs adapts optional functions to [Listener].
type ListenerFuncs struct {
	State    func(StateEvent)
	Progress func(ProgressEvent)
}

func (l ListenerFuncs) OnState(e StateEvent) {
	if l.State != nil {
		l.State(e)
	}
}

func (l ListenerFuncs) OnProgress(e ProgressEvent) {
	if l.Progress != nil {
		l.Progress(e)
	}
}

// Bus delivers events synchronously to every subscriber.
//
// Delivery order across listeners is unspecified.
type Bus struct {
	mu        sync.RWMutex
	listeners map[SubscriptionID]Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[SubscriptionID]Listener)}
}

// Subscribe registers l and returns the id used to unsubscribe it.
func (b *Bus) Subscribe(l Listener) SubscriptionID {
	id := SubscriptionID(shared.GenerateID())

	b.mu.Lock()
	b.listeners[id] = l
	b.mu.Unlock()
	return id
}

// Unsubscribe removes a listener and reports whether it was registered.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.listeners[id]
	delete(b.listeners, id)
	return ok
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// PublishState delivers e to every subscriber on the calling goroutine.
func (b *Bus) PublishState(e StateEvent) {
	for _, l := range b.snapshot() {
		l.OnState(e)
	}
}

// PublishProgress delivers e to every subscriber on the calling goroutine.
func (b *Bus) PublishProgress(e ProgressEvent) {
	for _, l := range b.snapshot() {
		l.OnProgress(e)
	}
}

// snapshot copies the registry so listeners may (un)subscribe during delivery.
func (b *Bus) snapshot() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		out = append(out, l)
	}
	return out
}
