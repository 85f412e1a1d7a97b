//go:build !((linux && cgo) || windows || darwin)

package media

import (
	"sync"

	"github.com/desertthunder/phono/internal/shared"
	"github.com/gopxl/beep/v2"
)

// AudioAvailable reports whether this build can reach a sound device.
// The speaker needs cgo for the native sound libraries.
const AudioAvailable = false

// silentOutput refuses to initialize, so every Open fails cleanly.
type silentOutput struct {
	mu sync.Mutex
}

// Speaker returns an output that is never available in this build.
func Speaker() Output { return &silentOutput{} }

func (*silentOutput) Init(beep.SampleRate, int) error { return shared.ErrAudioUnavailable }
func (*silentOutput) Play(...beep.Streamer)           {}
func (o *silentOutput) Lock()                         { o.mu.Lock() }
func (o *silentOutput) Unlock()                       { o.mu.Unlock() }
