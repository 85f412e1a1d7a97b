//go:build (linux && cgo) || windows || darwin

package media

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable reports whether this build can reach a sound device.
const AudioAvailable = true

type speakerOutput struct{}

// Speaker returns the process-wide beep speaker.
func Speaker() Output { return speakerOutput{} }

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }
