// Package playback is the engine that turns song references into sound.
//
// A [Session] is the transport controller: it owns the single active [MediaHandle],
// drives play/pause/stop/seek and moves songs between the [Queue] and its history on
// completion or explicit navigation. A [Resolver] materializes songs into local media,
// downloading remote sources into an on-disk cache. A [Bus] fans state and progress
// events out to subscribers.
//
// # Concurrency
//
// Session state is not locked. Every transport call must come from one controlling
// context, such as a [Loop] or a bubbletea program. Media callbacks arrive on the
// media backend's goroutines and are marshaled back through the session's [Dispatcher].
// The [Bus] registry is safe for concurrent use.
//
// # Failures
//
// Resolution failures never reach the caller. The session clears the current song,
// disposes the handle, moves to [Ended] and publishes one state event. Handle disposal
// errors are logged and swallowed.
package playback
