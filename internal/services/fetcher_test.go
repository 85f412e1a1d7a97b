package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/phono/internal/shared"
	tu "github.com/desertthunder/phono/internal/testing"
	"golang.org/x/time/rate"
)

func TestHTTPFetcher(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Nil Client", func(t *testing.T) {
			f := NewHTTPFetcher(nil, nil)
			if f.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("From Config", func(t *testing.T) {
			f, err := NewHTTPFetcherFromConfig(shared.CacheConfig{FetchTimeoutSeconds: 5, RequestsPerSecond: 2})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if f.httpClient.Timeout != 5*time.Second {
				t.Errorf("expected 5s timeout, got %v", f.httpClient.Timeout)
			}
			if f.limiter == nil || f.limiter.Limit() != rate.Limit(2) {
				t.Errorf("expected limiter at 2 rps, got %v", f.limiter)
			}
		})

		t.Run("From Config Without Rate", func(t *testing.T) {
			f, _ := NewHTTPFetcherFromConfig(shared.CacheConfig{})
			if f.limiter != nil {
				t.Error("expected no limiter when requests_per_second is 0")
			}
			if f.headers != nil {
				t.Error("expected no extra headers")
			}
		})

		t.Run("From Config With Headers File", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "headers.sh")
			tu.WriteFile(t, path, `curl -H 'Authorization: Bearer abc' -b 'session=1' https://cdn.example.com`)

			f, err := NewHTTPFetcherFromConfig(shared.CacheConfig{HeadersFile: path})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if f.headers == nil || f.headers.Cookie != "session=1" {
				t.Errorf("expected headers from file, got %+v", f.headers)
			}
		})

		t.Run("From Config With Unreadable Headers File", func(t *testing.T) {
			f, err := NewHTTPFetcherFromConfig(shared.CacheConfig{HeadersFile: "/nonexistent/headers.sh"})
			if err == nil {
				t.Error("expected error for missing headers file")
			}
			if f == nil || f.headers != nil {
				t.Error("expected a usable fetcher without headers")
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if got := r.Header.Get("User-Agent"); got != UserAgent {
					t.Errorf("expected user agent %s, got %s", UserAgent, got)
				}
				w.Write([]byte("ID3-audio-bytes"))
			}))
			defer server.Close()

			body, err := NewHTTPFetcher(server.Client(), nil).Fetch(context.Background(), server.URL+"/song.mp3")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer body.Close()

			data, _ := io.ReadAll(body)
			if string(data) != "ID3-audio-bytes" {
				t.Errorf("unexpected body %q", data)
			}
		})

		t.Run("Sends Captured Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer abc" {
					t.Errorf("expected authorization header, got %q", got)
				}
				if got := r.Header.Get("Cookie"); got != "session=1" {
					t.Errorf("expected cookie, got %q", got)
				}
				w.Write([]byte("ok"))
			}))
			defer server.Close()

			headers := &shared.RequestHeaders{Headers: map[string]string{"Authorization": "Bearer abc"}, Cookie: "session=1"}
			body, err := NewHTTPFetcher(server.Client(), nil).WithHeaders(headers).Fetch(context.Background(), server.URL+"/private.mp3")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			body.Close()
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			}))
			defer server.Close()

			_, err := NewHTTPFetcher(server.Client(), nil).Fetch(context.Background(), server.URL+"/missing.mp3")
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
		})

		t.Run("Unsupported Locator", func(t *testing.T) {
			for _, locator := range []string{"/music/local.mp3", "ftp://example.com/a.mp3", "://bad"} {
				_, err := NewHTTPFetcher(nil, nil).Fetch(context.Background(), locator)
				if !errors.Is(err, shared.ErrUnsupportedLocator) {
					t.Errorf("%s: expected ErrUnsupportedLocator, got %v", locator, err)
				}
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}
			_, err := NewHTTPFetcher(client, nil).Fetch(context.Background(), "https://cdn.example.com/a.mp3")
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
		})

		t.Run("Cancelled While Rate Limited", func(t *testing.T) {
			limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
			limiter.Allow()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewHTTPFetcher(nil, limiter).Fetch(ctx, "https://cdn.example.com/a.mp3")
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
		})
	})

	t.Run("FetcherFunc", func(t *testing.T) {
		called := false
		var f Fetcher = FetcherFunc(func(ctx context.Context, locator string) (io.ReadCloser, error) {
			called = true
			return io.NopCloser(nil), nil
		})
		f.Fetch(context.Background(), "https://x")
		if !called {
			t.Error("expected function to be called")
		}
	})
}
