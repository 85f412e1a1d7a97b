package media

import "github.com/gopxl/beep/v2"

// Output mixes streamers into the sound device.
//
// Lock and Unlock guard every streamer passed to Play. Mutating a playing
// stream without holding the lock races the mixer.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}
