// Package media plays local audio files through gopxl/beep.
//
// [Backend] implements playback.MediaBackend. Each opened file gets a handle that
// decodes it (mp3, wav or ogg vorbis), resamples to the output rate, applies the
// configured volume and feeds a [beep.Ctrl] into the [Output]. A ticker goroutine
// per handle reports progress and a [beep.Callback] at the end of the stream
// reports completion; both run on the backend's goroutines, never the caller's.
//
// The real speaker needs cgo on Linux. Builds without it get an [Output] whose Init
// fails with shared.ErrAudioUnavailable.
package media
