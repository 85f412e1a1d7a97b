// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Operations
//
// [Engine] provides:
//
//  1. [Engine.Prefetch] : warm the media cache
//     - Skips local songs and repeated sources
//     - Resolves remote songs through a bounded worker pool
//     - Starts downloads no faster than the configured rate
//
//  2. [Engine.PrefetchPlaylists] : warm the cache for whole playlists
//
//  3. [Engine.BulkExport] : export playlists concurrently
//     - Writes each playlist with the formatter package (json, csv, markdown, txt)
//     - Records failures per playlist and writes a JSON manifest
//
// # Progress Reporting
//
// Every operation takes an optional channel of [ProgressUpdate]. Sends use select with
// default, so a slow or absent reader never blocks the work.
package tasks
