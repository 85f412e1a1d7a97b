// Package models defines the catalog entities shared by the playback engine and the persistence layer.
//
// The package contains two categories of types:
//
// 1. Values handed to the playback engine:
//   - [Song] : immutable song reference compared by its descriptive fields
//   - [Playlist] : named, ordered song list; the engine only keeps [Playlist.Snapshot] copies
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [User] : listeners whose recent activity is tracked
//   - [PersistedSong] : catalog songs with play counts
//   - [PersistedPlaylist] : user playlists; membership lives in playlist_songs
//   - [RecentPlay] : one successful playback start
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
