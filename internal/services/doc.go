// Package services provides the remote fetch capability used to pull media into the local cache.
//
// The playback engine treats fetching as opaque: it hands a locator to a [Fetcher] and
// stream-copies whatever body comes back. [HTTPFetcher] implements it for http and https
// locators with an optional [rate.Limiter] so cache warm-ups do not hammer a host.
//
// # Error Handling
//
// Failures wrap shared sentinels:
//   - [shared.ErrUnsupportedLocator] : locator is not http(s)
//   - [shared.ErrFetchFailed] : transport error or non-2xx status
package services
