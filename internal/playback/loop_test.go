package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/phono/internal/models"
)

func TestLoop(t *testing.T) {
	t.Run("runs functions in order", func(t *testing.T) {
		l := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go l.Run(ctx)

		var got []int
		for i := range 3 {
			l.Dispatch(func() { got = append(got, i) })
		}
		if err := l.Do(ctx, func() { got = append(got, 3) }); err != nil {
			t.Fatalf("Do failed: %v", err)
		}

		if len(got) != 4 || got[0] != 0 || got[3] != 3 {
			t.Errorf("expected [0 1 2 3], got %v", got)
		}
	})

	t.Run("Run returns on context cancellation", func(t *testing.T) {
		l := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() { errs <- l.Run(ctx) }()
		cancel()

		select {
		case err := <-errs:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return")
		}

		select {
		case <-l.Stopped():
		default:
			t.Error("expected the loop to report stopped")
		}
	})

	t.Run("Do after Stop fails", func(t *testing.T) {
		l := NewLoop()
		l.Stop()
		l.Stop()

		err := l.Do(context.Background(), func() {})
		if !errors.Is(err, ErrLoopStopped) {
			t.Errorf("expected ErrLoopStopped, got %v", err)
		}
	})

	t.Run("drives a session", func(t *testing.T) {
		l := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go l.Run(ctx)

		backend := &fakeBackend{}
		s := NewSession(newFakeResolver(), backend, WithDispatcher(l.Dispatch))
		defer s.Close()

		if err := l.Do(ctx, func() { s.LoadVirtualPlaylist([]models.Song{song("a"), song("b")}) }); err != nil {
			t.Fatalf("Do failed: %v", err)
		}

		finished := make(chan struct{})
		go func() {
			backend.opened[0].finish()
			close(finished)
		}()
		<-finished

		var current string
		if err := l.Do(ctx, func() {
			if c, ok := s.CurrentSong(); ok {
				current = c.Name
			}
		}); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if current != "b" {
			t.Errorf("expected b after completion, got %q", current)
		}
	})
}
