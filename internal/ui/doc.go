// Package ui implements the now-playing terminal interface using bubbletea's Elm architecture.
//
// The TUI never touches a [playback.Session] from its own goroutine. Transport commands are
// handed to the session's controlling context through a [playback.Dispatcher] (normally a
// [playback.Loop]), and session events come back as messages relayed by [Forward] and [Relay]:
//  1. [PlayerView] : Current song, progress bar, transport state and the next songs in the queue
//  2. [PlaylistView] : Pick a catalog playlist to load or append to the queue
//  3. [QueueView] : Browse the queue and jump to a song
//
// Remote downloads block only the controlling context, so the interface keeps rendering while
// a song is being fetched.
//
// Keyboard bindings (space, n/p, s, x, ←/→, tab, u, q) are listed with charmbracelet/bubbles/help.
package ui
