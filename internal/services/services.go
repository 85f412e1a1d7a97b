package services

import (
	"context"
	"io"
)

// Fetcher opens a remote resource for reading.
//
// The caller owns the returned body and must close it.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, locator string) (io.ReadCloser, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	return f(ctx, locator)
}
