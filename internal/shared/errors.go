package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Playback and media errors
	ErrResolutionFailed   = fmt.Errorf("media resolution failed")
	ErrUnsupportedLocator = fmt.Errorf("unsupported source locator")
	ErrFetchFailed        = fmt.Errorf("remote fetch failed")
	ErrAudioUnavailable   = fmt.Errorf("audio output unavailable in this build")
	ErrUnsupportedFormat  = fmt.Errorf("unsupported audio format")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Catalog errors
	ErrSongNotFound     = fmt.Errorf("song not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrUserNotFound     = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
