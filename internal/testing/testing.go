// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/phono/internal/models"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// SyncBuffer is a [bytes.Buffer] safe for concurrent writers.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FakeFetcher serves canned bodies keyed by locator and counts every call.
//
// It satisfies services.Fetcher.
type FakeFetcher struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	errs     map[string]error
	truncate map[string]int
	calls    map[string]int
	gate     chan struct{}
}

// NewFakeFetcher creates an empty fetcher; unknown locators fail.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		bodies:   make(map[string][]byte),
		errs:     make(map[string]error),
		truncate: make(map[string]int),
		calls:    make(map[string]int),
	}
}

// Serve registers body for locator.
func (f *FakeFetcher) Serve(locator string, body []byte) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[locator] = body
	return f
}

// Fail makes every fetch of locator return err.
func (f *FakeFetcher) Fail(locator string, err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[locator] = err
	return f
}

// FailAfter serves the first n bytes of the registered body, then a read error.
func (f *FakeFetcher) FailAfter(locator string, n int) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.truncate[locator] = n
	return f
}

// Hold blocks every fetch until the returned release func is called or the fetch context ends.
func (f *FakeFetcher) Hold() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns how many times locator was fetched.
func (f *FakeFetcher) Calls(locator string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locator]
}

// Total returns the number of fetches across all locators.
func (f *FakeFetcher) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Fetch implements services.Fetcher.
func (f *FakeFetcher) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls[locator]++
	gate := f.gate
	body, ok := f.bodies[locator]
	err := f.errs[locator]
	cut, truncated := f.truncate[locator]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no fake body for %s", locator)
	}
	if truncated {
		return io.NopCloser(io.MultiReader(bytes.NewReader(body[:cut]), &FCloser{})), nil
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Songs returns n distinct local songs named "Song 1".."Song n".
func Songs(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.Song{
			Name:   fmt.Sprintf("Song %d", i+1),
			Author: "Fixture",
			Source: fmt.Sprintf("/music/song-%d.mp3", i+1),
			Style:  "test",
		}
	}
	return songs
}

// RemoteSong returns a song whose source is an https URL under host.
func RemoteSong(name, host string) models.Song {
	return models.Song{Name: name, Author: "Fixture", Source: "https://" + host + "/" + name + ".mp3", Style: "test"}
}

// WriteSilentWAV encodes d of silence at rate into a 16-bit stereo WAV file at path.
func WriteSilentWAV(t *testing.T, path string, rate beep.SampleRate, d time.Duration) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(rate.N(d)), format); err != nil {
		t.Fatalf("Failed to encode wav %s: %v", path, err)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
