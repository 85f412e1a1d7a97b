package media

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/desertthunder/phono/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

const (
	DefaultSampleRate       = beep.SampleRate(44100)
	DefaultBufferSize       = 100 * time.Millisecond
	DefaultProgressInterval = 500 * time.Millisecond

	resampleQuality = 4
	minVolume       = -10.0 // base-2 exponent treated as inaudible
)

var _ playback.MediaBackend = (*Backend)(nil)

// Backend opens local files for playback on an [Output].
//
// The output is initialized lazily on the first Open, once, at the backend's
// sample rate. Every stream is resampled to that rate.
type Backend struct {
	out      Output
	rate     beep.SampleRate
	buffer   time.Duration
	interval time.Duration
	volume   int
	logger   *log.Logger

	initOnce sync.Once
	initErr  error
}

// Option configures a [Backend].
type Option func(*Backend)

// WithOutput replaces the speaker, mostly for tests.
func WithOutput(o Output) Option { return func(b *Backend) { b.out = o } }

func WithSampleRate(rate int) Option { return func(b *Backend) { b.rate = beep.SampleRate(rate) } }

func WithBufferSize(d time.Duration) Option { return func(b *Backend) { b.buffer = d } }

// WithProgressInterval sets how often handles report their position.
func WithProgressInterval(d time.Duration) Option { return func(b *Backend) { b.interval = d } }

// WithVolume sets the output volume in percent. 0 mutes.
func WithVolume(percent int) Option { return func(b *Backend) { b.volume = percent } }

func WithLogger(l *log.Logger) Option { return func(b *Backend) { b.logger = l } }

// NewBackend creates a backend writing to the speaker unless [WithOutput] says otherwise.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		rate:     DefaultSampleRate,
		buffer:   DefaultBufferSize,
		interval: DefaultProgressInterval,
		volume:   100,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.out == nil {
		b.out = Speaker()
	}
	if b.logger == nil {
		b.logger = shared.NewLogger(io.Discard)
	}
	if b.interval <= 0 {
		b.interval = DefaultProgressInterval
	}
	return b
}

// NewBackendFromConfig creates a speaker backend from the [player] config section.
func NewBackendFromConfig(cfg shared.PlayerConfig, logger *log.Logger, opts ...Option) *Backend {
	base := []Option{
		WithSampleRate(cfg.SampleRate),
		WithBufferSize(cfg.BufferSize()),
		WithProgressInterval(cfg.ProgressInterval()),
		WithVolume(cfg.Volume),
		WithLogger(logger),
	}
	return NewBackend(append(base, opts...)...)
}

// Init prepares the output. Open calls it; calling it early surfaces a missing
// sound device before anything is resolved.
func (b *Backend) Init() error {
	b.initOnce.Do(func() {
		if b.rate <= 0 {
			b.initErr = fmt.Errorf("%w: sample rate must be positive", shared.ErrInvalidConfig)
			return
		}
		bufferSize := max(b.rate.N(b.buffer), 1)
		if err := b.out.Init(b.rate, bufferSize); err != nil {
			b.initErr = fmt.Errorf("%w: %w", shared.ErrAudioUnavailable, err)
			return
		}
		b.logger.Debug("audio output ready", "rate", int(b.rate), "buffer", b.buffer)
	})
	return b.initErr
}

// Open decodes ref.Path and prepares a paused-at-zero handle. Nothing is
// heard until the handle's Play is called.
func (b *Backend) Open(ref playback.MediaRef, callbacks playback.MediaCallbacks) (playback.MediaHandle, error) {
	if err := b.Init(); err != nil {
		return nil, err
	}

	stream, format, err := decode(ref.Path)
	if err != nil {
		return nil, err
	}

	var s beep.Streamer = stream
	if format.SampleRate != b.rate {
		s = beep.Resample(resampleQuality, format.SampleRate, b.rate, s)
	}
	s = &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeExponent(b.volume),
		Silent:   b.volume <= 0,
	}

	h := &handle{
		out:       b.out,
		stream:    stream,
		format:    format,
		callbacks: callbacks,
		interval:  b.interval,
		logger:    b.logger.With("song", ref.Song.Name),
		stop:      make(chan struct{}),
	}
	h.ctrl = &beep.Ctrl{Streamer: s}
	h.seq = beep.Seq(h.ctrl, beep.Callback(h.onEnd))

	b.logger.Debug("opened media", "path", ref.Path, "rate", int(format.SampleRate), "duration", h.Duration())
	return h, nil
}

// volumeExponent maps a 0..100 percentage onto a base-2 gain exponent, 100 being unity.
func volumeExponent(percent int) float64 {
	if percent <= 0 {
		return minVolume
	}
	return max(math.Log2(float64(min(percent, 100))/100), minVolume)
}
