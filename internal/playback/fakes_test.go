package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

type fakeResolver struct {
	fails map[string]error
	calls []models.Song
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{fails: make(map[string]error)}
}

func (r *fakeResolver) Resolve(ctx context.Context, song models.Song) (MediaRef, error) {
	r.calls = append(r.calls, song)
	if err, ok := r.fails[song.Source]; ok {
		return MediaRef{}, errors.Join(shared.ErrResolutionFailed, err)
	}
	return MediaRef{Song: song, Path: song.Source}, nil
}

type fakeHandle struct {
	ref       MediaRef
	callbacks MediaCallbacks
	duration  time.Duration
	position  time.Duration
	playing   bool
	paused    bool
	closed    bool
	seeks     []time.Duration
	closeErr  error
}

func (h *fakeHandle) Play() error   { h.playing = true; return nil }
func (h *fakeHandle) Pause() error  { h.paused = true; return nil }
func (h *fakeHandle) Resume() error { h.paused = false; return nil }
func (h *fakeHandle) Stop() error {
	h.paused = true
	h.position = 0
	return nil
}
func (h *fakeHandle) Seek(pos time.Duration) error {
	h.seeks = append(h.seeks, pos)
	h.position = pos
	return nil
}
func (h *fakeHandle) Position() time.Duration { return h.position }
func (h *fakeHandle) Duration() time.Duration { return h.duration }
func (h *fakeHandle) Close() error {
	h.closed = true
	return h.closeErr
}

// finish simulates the backend reaching the end of the stream.
func (h *fakeHandle) finish() { h.callbacks.OnFinished() }

type fakeBackend struct {
	opened   []*fakeHandle
	openErr  error
	closeErr error
	duration time.Duration
}

func (b *fakeBackend) Open(ref MediaRef, cb MediaCallbacks) (MediaHandle, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	dur := b.duration
	if dur == 0 {
		dur = 3 * time.Minute
	}
	h := &fakeHandle{ref: ref, callbacks: cb, duration: dur, closeErr: b.closeErr}
	b.opened = append(b.opened, h)
	return h, nil
}

func (b *fakeBackend) last() *fakeHandle {
	if len(b.opened) == 0 {
		return nil
	}
	return b.opened[len(b.opened)-1]
}

// recorder collects bus events.
type recorder struct {
	mu       sync.Mutex
	states   []StateEvent
	progress []ProgressEvent
}

func (r *recorder) OnState(e StateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, e)
}

func (r *recorder) OnProgress(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, e)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = nil
	r.progress = nil
}

// started records songs passed to a SongStartedObserver.
type started struct {
	songs []models.Song
}

func (s *started) OnSongStarted(song models.Song) error {
	s.songs = append(s.songs, song)
	return nil
}

func (s *started) names() []string {
	out := make([]string, len(s.songs))
	for i, song := range s.songs {
		out[i] = song.Name
	}
	return out
}

func names(songs []models.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Name
	}
	return out
}

func song(name string) models.Song {
	return models.Song{Name: name, Author: "Tester", Source: "/music/" + name + ".mp3", Style: "test"}
}
