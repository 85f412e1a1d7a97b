package playback

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/desertthunder/phono/internal/models"
)

func newTestQueue() *Queue {
	return NewQueue(NewShuffler(rand.NewPCG(3, 5)))
}

func playlist(id string, songs ...string) models.Playlist {
	p := models.Playlist{ID: id, Name: "playlist " + id}
	for _, n := range songs {
		p.Songs = append(p.Songs, song(n))
	}
	return p
}

func TestQueueFill(t *testing.T) {
	t.Run("appends in playlist order", func(t *testing.T) {
		q := newTestQueue()
		q.Fill(playlist("p", "a", "b", "c"), false)

		if got := names(q.Songs()); !slices.Equal(got, []string{"a", "b", "c"}) {
			t.Errorf("expected [a b c], got %v", got)
		}
	})

	t.Run("shuffled fill is a permutation", func(t *testing.T) {
		q := newTestQueue()
		p := playlist("p", "a", "b", "c", "d", "e")
		q.Fill(p, true)

		got := names(q.Songs())
		slices.Sort(got)
		if !slices.Equal(got, names(p.Songs)) {
			t.Errorf("expected a permutation of %v, got %v", names(p.Songs), got)
		}
	})

	t.Run("empty playlist is a no-op", func(t *testing.T) {
		q := newTestQueue()
		q.Fill(playlist("p"), false)

		if !q.IsEmpty() {
			t.Errorf("expected empty queue, got %v", names(q.Songs()))
		}
	})
}

func TestQueueClearFromPlaylist(t *testing.T) {
	t.Run("removes only the playlist's entries", func(t *testing.T) {
		q := newTestQueue()
		q.Fill(playlist("one", "a", "b"), false)
		q.Fill(playlist("two", "x", "y"), false)
		q.PushFront(song("priority"))

		q.ClearFromPlaylist(playlist("one", "a", "b"))

		if got := names(q.Songs()); !slices.Equal(got, []string{"priority", "x", "y"}) {
			t.Errorf("expected [priority x y], got %v", got)
		}
	})

	t.Run("only the latest fill is cleared", func(t *testing.T) {
		q := newTestQueue()
		p := playlist("one", "a", "b")
		q.Fill(p, false)
		q.Fill(p, false)

		q.ClearFromPlaylist(p)

		if got := names(q.Songs()); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("expected the first fill to survive, got %v", got)
		}
	})

	t.Run("priority insert after a consumed head survives", func(t *testing.T) {
		q := newTestQueue()
		p := playlist("p", "a", "b")
		q.Fill(p, false)
		q.PopFront()
		q.PushFront(song("priority"))

		q.ClearFromPlaylist(p)

		if got := names(q.Songs()); !slices.Equal(got, []string{"priority"}) {
			t.Errorf("expected [priority], got %v", got)
		}
	})

	t.Run("partially consumed fill", func(t *testing.T) {
		q := newTestQueue()
		p := playlist("one", "a", "b", "c")
		q.Fill(p, false)
		q.PopFront()

		q.ClearFromPlaylist(p)

		if !q.IsEmpty() {
			t.Errorf("expected empty queue, got %v", names(q.Songs()))
		}
	})

	t.Run("playlists without ids are keyed by name", func(t *testing.T) {
		q := newTestQueue()
		p := models.NewVirtualPlaylist([]models.Song{song("a")})
		q.Fill(p, false)
		q.PushFront(song("b"))

		q.ClearFromPlaylist(models.NewVirtualPlaylist(nil))

		if got := names(q.Songs()); !slices.Equal(got, []string{"b"}) {
			t.Errorf("expected [b], got %v", got)
		}
	})

	t.Run("unknown playlist is a no-op", func(t *testing.T) {
		q := newTestQueue()
		q.Fill(playlist("one", "a"), false)
		q.ClearFromPlaylist(playlist("two", "a"))

		if q.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", q.Len())
		}
	})
}

func TestQueueHistory(t *testing.T) {
	t.Run("is a stack", func(t *testing.T) {
		q := newTestQueue()
		q.PushHistory(song("a"))
		q.PushHistory(song("b"))

		s, ok := q.PopHistory()
		if !ok || s.Name != "b" {
			t.Errorf("expected b, got %v %v", s.Name, ok)
		}
		if got := names(q.History()); !slices.Equal(got, []string{"a"}) {
			t.Errorf("expected [a], got %v", got)
		}
	})

	t.Run("skips a repeat of the top", func(t *testing.T) {
		q := newTestQueue()
		q.PushHistory(song("a"))
		q.PushHistory(song("a"))
		q.PushHistory(song("b"))
		q.PushHistory(song("a"))

		if got := names(q.History()); !slices.Equal(got, []string{"a", "b", "a"}) {
			t.Errorf("expected [a b a], got %v", got)
		}
	})

	t.Run("empty pops report false", func(t *testing.T) {
		q := newTestQueue()
		if _, ok := q.PopHistory(); ok {
			t.Error("expected no history")
		}
		if _, ok := q.PopFront(); ok {
			t.Error("expected no queued song")
		}
		if !q.HistoryIsEmpty() {
			t.Error("expected empty history")
		}
	})
}

func TestQueueReset(t *testing.T) {
	q := newTestQueue()
	p := playlist("p", "a", "b")
	q.Fill(p, false)
	q.PushHistory(song("z"))

	q.Reset()

	if !q.IsEmpty() || !q.HistoryIsEmpty() {
		t.Fatal("expected queue and history to be empty")
	}

	q.PushFront(song("x"))
	q.ClearFromPlaylist(p)
	if q.Len() != 1 {
		t.Error("fills from before the reset must not be tracked")
	}
}
