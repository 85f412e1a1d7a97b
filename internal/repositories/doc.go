// Package repositories implements SQLite persistence for the catalog.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [UserRepository] : listeners, looked up by email
//   - [SongRepository] : catalog songs with play counts, looked up by source locator
//   - [PlaylistRepository] : playlists and their ordered membership; also the catalog provider for the player
//   - [RecentRepository] : recent playback starts per user
//
// [PlayStatsAdapter] and [RecentActivityAdapter] plug the repositories into the playback
// session as collaborators notified when a song starts.
package repositories
