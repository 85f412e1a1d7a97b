package playback

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/shared"
)

// State is the transport state of a [Session].
type State int

const (
	Idle    State = iota // nothing loaded
	Loading              // resolving media
	Playing
	Paused
	Ended // reproduction finished, no current song
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// SongStartedObserver is told once per successful playback start.
type SongStartedObserver interface {
	OnSongStarted(song models.Song) error
}

// ObserverFunc adapts a function to [SongStartedObserver].
type ObserverFunc func(song models.Song) error

func (f ObserverFunc) OnSongStarted(song models.Song) error { return f(song) }

// Session is the playback transport controller.
//
// A Session is created once per run by the composition root and passed to
// whoever drives it. All methods must be called from one controlling context.
type Session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *log.Logger
	resolver MediaResolver
	backend  MediaBackend
	dispatch Dispatcher
	bus      *Bus
	queue    *Queue
	shuffler *Shuffler

	observers []SongStartedObserver

	state    State
	current  *models.Song
	playlist *models.Playlist
	shuffle  bool
	handle   MediaHandle
	progress float64

	// playbackID increments with every handle so late callbacks from a
	// replaced handle can be recognized and dropped.
	playbackID uint64
}

// Option configures a [Session].
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

// WithShuffler sets the randomness used for shuffled fills.
func WithShuffler(sh *Shuffler) Option { return func(s *Session) { s.shuffler = sh } }

// WithDispatcher sets how media callbacks reach the controlling context.
func WithDispatcher(d Dispatcher) Option { return func(s *Session) { s.dispatch = d } }

// WithObservers registers collaborators notified when a song starts.
func WithObservers(obs ...SongStartedObserver) Option {
	return func(s *Session) { s.observers = append(s.observers, obs...) }
}

// WithContext bounds remote resolution. Cancelling it aborts in-flight downloads.
func WithContext(ctx context.Context) Option { return func(s *Session) { s.ctx = ctx } }

// WithBus shares an existing bus.
func WithBus(b *Bus) Option { return func(s *Session) { s.bus = b } }

// WithShuffle sets the initial shuffle mode.
func WithShuffle(enabled bool) Option { return func(s *Session) { s.shuffle = enabled } }

// NewSession creates an idle session.
func NewSession(resolver MediaResolver, backend MediaBackend, opts ...Option) *Session {
	s := &Session{
		ctx:      context.Background(),
		resolver: resolver,
		backend:  backend,
		dispatch: Immediate,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = shared.NewLogger(io.Discard)
	}
	if s.bus == nil {
		s.bus = NewBus()
	}
	s.queue = NewQueue(s.shuffler)
	s.ctx, s.cancel = context.WithCancel(s.ctx)
	return s
}

// Reproduce makes song current and starts it.
//
// On failure the session ends up [Ended] with no current song. Exactly one
// state event is published either way.
func (s *Session) Reproduce(song models.Song) {
	s.current = &song
	s.state = Loading

	ref, err := s.resolver.Resolve(s.ctx, song)
	if err != nil {
		s.fail(song, err)
		return
	}

	s.disposeHandle()
	id := s.playbackID

	handle, err := s.backend.Open(ref, MediaCallbacks{
		OnProgress: func(pos, dur time.Duration) {
			s.dispatch(func() { s.onProgress(id, pos, dur) })
		},
		OnFinished: func() {
			s.dispatch(func() { s.onFinished(id) })
		},
	})
	if err != nil {
		s.fail(song, err)
		return
	}
	s.handle = handle

	if err := handle.Play(); err != nil {
		s.fail(song, err)
		return
	}

	s.state = Playing
	s.progress = 0
	s.logger.Info("playing", "song", song.String(), "remote", ref.Remote)

	for _, o := range s.observers {
		if err := o.OnSongStarted(song); err != nil {
			s.logger.Warn("song started observer failed", "song", song.Name, "err", err)
		}
	}
	s.publishState()
}

// PushReproduce moves the current song to history, then reproduces song.
func (s *Session) PushReproduce(song models.Song) {
	if s.current != nil && !s.current.Equal(song) {
		s.queue.PushHistory(*s.current)
	}
	s.Reproduce(song)
}

// LoadPlaylist replaces the loaded playlist's queue contribution with a
// snapshot of p. Starts playback when nothing is current.
func (s *Session) LoadPlaylist(p models.Playlist) {
	snap := p.Snapshot()

	if s.playlist != nil {
		s.queue.ClearFromPlaylist(*s.playlist)
	}
	s.playlist = &snap
	s.queue.Fill(snap, s.shuffle)

	if s.current == nil {
		s.Next()
		return
	}
	s.publishState()
}

// LoadVirtualPlaylist loads songs as an unregistered playlist.
func (s *Session) LoadVirtualPlaylist(songs []models.Song) {
	s.LoadPlaylist(models.NewVirtualPlaylist(songs))
}

// Next advances to the head of the queue, refilling it from the loaded
// playlist when empty. Ends when there is nothing to play.
func (s *Session) Next() {
	if s.current != nil {
		s.queue.PushHistory(*s.current)
	}

	if s.queue.IsEmpty() && s.playlist != nil {
		s.queue.Fill(*s.playlist, s.shuffle)
	}

	song, ok := s.queue.PopFront()
	if !ok {
		s.end()
		return
	}
	s.Reproduce(song)
}

// Previous returns the current song to the queue front and replays the
// most recent history entry. Ends when history is empty.
func (s *Session) Previous() {
	if s.current != nil {
		s.queue.PushFront(*s.current)
	}

	song, ok := s.queue.PopHistory()
	if !ok {
		s.end()
		return
	}
	s.Reproduce(song)
}

// Pause pauses the active handle.
func (s *Session) Pause() {
	if s.handle == nil || s.state != Playing {
		return
	}
	if err := s.handle.Pause(); err != nil {
		s.logger.Warn("pause failed", "err", err)
		return
	}
	s.state = Paused
	s.publishState()
}

// Resume continues a paused or stopped handle.
func (s *Session) Resume() {
	if s.handle == nil || s.state != Paused {
		return
	}
	if err := s.handle.Resume(); err != nil {
		s.logger.Warn("resume failed", "err", err)
		return
	}
	s.state = Playing
	s.publishState()
}

// TogglePause pauses when playing and resumes when paused.
func (s *Session) TogglePause() {
	switch s.state {
	case Playing:
		s.Pause()
	case Paused:
		s.Resume()
	}
}

// Stop pauses and rewinds the current song, keeping it current.
func (s *Session) Stop() {
	if s.handle == nil {
		return
	}
	if err := s.handle.Stop(); err != nil {
		s.logger.Warn("stop failed", "err", err)
		return
	}
	s.state = Paused
	s.progress = 0
	s.publishState()
}

// AddToQueue front-inserts songs one at a time, so a batch ends up reversed.
// Starts playback when nothing is current.
func (s *Session) AddToQueue(songs ...models.Song) {
	for _, song := range songs {
		s.queue.PushFront(song)
	}

	if s.current == nil {
		s.Next()
		return
	}
	s.publishState()
}

// SetShuffle sets shuffle mode and rebuilds the loaded playlist's share of the queue.
func (s *Session) SetShuffle(enabled bool) {
	s.shuffle = enabled
	if s.playlist != nil {
		s.queue.ClearFromPlaylist(*s.playlist)
		s.queue.Fill(*s.playlist, s.shuffle)
	}
	s.publishState()
}

// Seek moves to fraction (clamped to [0,1]) of the current song's duration.
func (s *Session) Seek(fraction float64) {
	if s.handle == nil {
		return
	}

	dur := s.handle.Duration()
	if dur <= 0 {
		return
	}

	fraction = min(max(fraction, 0), 1)
	if err := s.handle.Seek(time.Duration(fraction * float64(dur))); err != nil {
		s.logger.Warn("seek failed", "err", err)
		return
	}
	s.progress = fraction
	s.bus.PublishProgress(ProgressEvent{Progress: fraction})
}

// Subscribe registers a listener for state and progress events.
func (s *Session) Subscribe(l Listener) SubscriptionID { return s.bus.Subscribe(l) }

// Unsubscribe removes a listener.
func (s *Session) Unsubscribe(id SubscriptionID) bool { return s.bus.Unsubscribe(id) }

// ResetSession clears everything: queue, history, current song and
// playlist, shuffle mode and the active handle.
func (s *Session) ResetSession() {
	s.disposeHandle()
	s.queue.Reset()
	s.current = nil
	s.playlist = nil
	s.shuffle = false
	s.progress = 0
	s.state = Idle
	s.publishState()
}

// Close aborts in-flight resolution and releases the active handle.
func (s *Session) Close() {
	s.cancel()
	s.disposeHandle()
}

func (s *Session) State() State { return s.state }

func (s *Session) Shuffle() bool { return s.shuffle }

func (s *Session) Progress() float64 { return s.progress }

// CurrentSong returns the current song, if any.
func (s *Session) CurrentSong() (models.Song, bool) {
	if s.current == nil {
		return models.Song{}, false
	}
	return *s.current, true
}

// CurrentPlaylist returns the loaded playlist snapshot, if any.
func (s *Session) CurrentPlaylist() (models.Playlist, bool) {
	if s.playlist == nil {
		return models.Playlist{}, false
	}
	return s.playlist.Snapshot(), true
}

// Queue returns the pending songs, head first.
func (s *Session) Queue() []models.Song { return s.queue.Songs() }

// History returns previously played songs, oldest first.
func (s *Session) History() []models.Song { return s.queue.History() }

// Elapsed returns the position and duration of the active handle.
func (s *Session) Elapsed() (position, duration time.Duration) {
	if s.handle == nil {
		return 0, 0
	}
	return s.handle.Position(), s.handle.Duration()
}

func (s *Session) onProgress(id uint64, pos, dur time.Duration) {
	if id != s.playbackID || s.handle == nil || dur <= 0 {
		return
	}
	s.progress = min(max(float64(pos)/float64(dur), 0), 1)
	s.bus.PublishProgress(ProgressEvent{Progress: s.progress})
}

func (s *Session) onFinished(id uint64) {
	if id != s.playbackID {
		return
	}
	s.Next()
}

// fail degrades a failed start to Ended.
func (s *Session) fail(song models.Song, err error) {
	s.logger.Error("playback failed", "song", song.String(), "err", err)
	s.end()
}

func (s *Session) end() {
	s.disposeHandle()
	s.current = nil
	s.progress = 0
	s.state = Ended
	s.publishState()
}

// disposeHandle closes the active handle and invalidates its pending
// callbacks. Errors are logged, never returned.
func (s *Session) disposeHandle() {
	s.playbackID++
	if s.handle == nil {
		return
	}
	if err := s.handle.Close(); err != nil {
		s.logger.Warn("failed to dispose media handle", "err", err)
	}
	s.handle = nil
}

func (s *Session) publishState() {
	e := StateEvent{State: s.state, Progress: s.progress}
	if s.current != nil {
		song := *s.current
		e.Song = &song
	}
	if s.playlist != nil {
		p := s.playlist.Snapshot()
		e.Playlist = &p
	}
	s.bus.PublishState(e)
}
