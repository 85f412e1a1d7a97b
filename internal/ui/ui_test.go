package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/playback"
	"github.com/desertthunder/phono/internal/shared"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, song models.Song) (playback.MediaRef, error) {
	if song.Source == "" {
		return playback.MediaRef{}, shared.ErrResolutionFailed
	}
	return playback.MediaRef{Song: song, Path: song.Source}, nil
}

type stubHandle struct {
	position time.Duration
	seeks    []time.Duration
	paused   bool
}

func (h *stubHandle) Play() error   { return nil }
func (h *stubHandle) Pause() error  { h.paused = true; return nil }
func (h *stubHandle) Resume() error { h.paused = false; return nil }
func (h *stubHandle) Stop() error {
	h.paused = true
	h.position = 0
	return nil
}
func (h *stubHandle) Seek(d time.Duration) error {
	h.seeks = append(h.seeks, d)
	h.position = d
	return nil
}
func (h *stubHandle) Position() time.Duration { return h.position }
func (h *stubHandle) Duration() time.Duration { return 100 * time.Second }
func (h *stubHandle) Close() error            { return nil }

type stubBackend struct {
	handles []*stubHandle
}

func (b *stubBackend) Open(playback.MediaRef, playback.MediaCallbacks) (playback.MediaHandle, error) {
	h := &stubHandle{}
	b.handles = append(b.handles, h)
	return h, nil
}

func (b *stubBackend) last() *stubHandle { return b.handles[len(b.handles)-1] }

func album(id string, n int) models.Playlist {
	p := models.Playlist{ID: id, Name: "Album " + id}
	for i := range n {
		p.Songs = append(p.Songs, models.Song{
			Name:   fmt.Sprintf("%s track %d", id, i+1),
			Author: "Band " + id,
			Source: fmt.Sprintf("/music/%s/%d.mp3", id, i+1),
			Style:  "rock",
		})
	}
	return p
}

type harness struct {
	model   *Model
	session *playback.Session
	backend *stubBackend
	sent    []tea.Msg
}

// newHarness wires a model to a session the same way the play command does, with the
// controlling context collapsed onto the test goroutine.
func newHarness(t *testing.T, catalog ...models.Playlist) *harness {
	t.Helper()

	h := &harness{backend: &stubBackend{}}
	h.session = playback.NewSession(stubResolver{}, h.backend, playback.WithShuffler(playback.NewShuffler(nil)))
	t.Cleanup(h.session.Close)

	h.model = NewModel(h.session, playback.Immediate, catalog)
	Forward(h.session, func(msg tea.Msg) {
		h.sent = append(h.sent, msg)
		h.model.Update(msg)
	})
	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) press(keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.model.Update(k)
	}
	return cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func current(t *testing.T, s *playback.Session) string {
	t.Helper()
	song, ok := s.CurrentSong()
	if !ok {
		return ""
	}
	return song.Name
}

func TestForward(t *testing.T) {
	t.Run("state events carry a snapshot of the queue", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 3))

		if len(h.sent) != 1 {
			t.Fatalf("expected 1 message, got %d", len(h.sent))
		}
		msg := h.sent[0].(Msg)
		if msg.kind != MsgState {
			t.Fatalf("expected a state message, got %v", msg.kind)
		}

		np := msg.data.(nowPlaying)
		if np.state != playback.Playing || np.song == nil || np.song.Name != "a track 1" {
			t.Errorf("unexpected snapshot %+v", np)
		}
		if len(np.upNext) != 2 || np.played != 0 || np.duration != 100*time.Second {
			t.Errorf("expected 2 queued songs and a 100s duration, got %d/%v", len(np.upNext), np.duration)
		}
	})

	t.Run("history length follows navigation", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 3))
		h.session.Next()

		if h.model.now.played != 1 || len(h.model.now.upNext) != 1 {
			t.Errorf("expected 1 played and 1 queued, got %d/%d", h.model.now.played, len(h.model.now.upNext))
		}
	})

	t.Run("progress events update the clock", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 1))
		h.session.Seek(0.5)

		last := h.sent[len(h.sent)-1].(Msg)
		if last.kind != MsgProgress {
			t.Fatalf("expected a progress message, got %v", last.kind)
		}
		if h.model.now.progress != 0.5 || h.model.now.position != 50*time.Second {
			t.Errorf("expected half way at 50s, got %v at %v", h.model.now.progress, h.model.now.position)
		}
	})

	t.Run("unsubscribing stops relaying", func(t *testing.T) {
		h := newHarness(t)
		id := Forward(h.session, func(tea.Msg) { t.Error("unsubscribed listener called") })
		if !h.session.Unsubscribe(id) {
			t.Fatal("expected listener to be registered")
		}
		h.session.LoadPlaylist(album("a", 1))
	})
}

func TestPlayerKeys(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 3))

		h.press(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		if h.session.State() != playback.Paused || !h.backend.last().paused {
			t.Errorf("space should pause, state is %v", h.session.State())
		}

		h.press(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		if h.session.State() != playback.Playing {
			t.Errorf("space should resume, state is %v", h.session.State())
		}

		h.press(runes("n"))
		if got := current(t, h.session); got != "a track 2" {
			t.Errorf("n should advance, playing %q", got)
		}

		h.press(runes("p"))
		if got := current(t, h.session); got != "a track 1" {
			t.Errorf("p should go back, playing %q", got)
		}

		h.press(runes("x"))
		if h.session.State() != playback.Paused || h.model.now.progress != 0 {
			t.Errorf("x should stop and rewind, state is %v", h.session.State())
		}
	})

	t.Run("seek moves five percent", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 1))

		h.press(tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyLeft})

		want := []time.Duration{5 * time.Second, 10 * time.Second, 5 * time.Second}
		var got []time.Duration
		for _, d := range h.backend.last().seeks {
			got = append(got, d.Round(time.Millisecond))
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("expected seeks %v, got %v", want, got)
		}
	})

	t.Run("shuffle toggles", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 4))

		h.press(runes("s"))
		if !h.session.Shuffle() || !h.model.now.shuffle {
			t.Error("s should enable shuffle")
		}
		h.press(runes("s"))
		if h.session.Shuffle() {
			t.Error("s should disable shuffle again")
		}
	})

	t.Run("quit", func(t *testing.T) {
		h := newHarness(t)
		cmd := h.press(runes("q"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("q should quit")
		}
	})

	t.Run("help toggles the full key list", func(t *testing.T) {
		h := newHarness(t)
		h.press(runes("?"))
		if !h.model.help.ShowAll {
			t.Error("? should show all bindings")
		}
		if !strings.Contains(h.model.View(), "shuffle") {
			t.Error("full help should list shuffle")
		}
	})
}

func TestPlaylistView(t *testing.T) {
	t.Run("enter loads the selected playlist", func(t *testing.T) {
		h := newHarness(t, album("a", 2), album("b", 2))

		h.press(tea.KeyMsg{Type: tea.KeyTab})
		if h.model.view != PlaylistView {
			t.Fatalf("tab should open the playlist picker, view is %v", h.model.view)
		}

		h.press(tea.KeyMsg{Type: tea.KeyEnter})
		if h.model.view != PlayerView {
			t.Errorf("enter should return to the player, view is %v", h.model.view)
		}
		if got := current(t, h.session); got != "a track 1" {
			t.Errorf("expected first playlist to play, got %q", got)
		}
	})

	t.Run("a appends songs to the queue front", func(t *testing.T) {
		h := newHarness(t, album("b", 2))
		h.session.LoadPlaylist(album("a", 2))

		h.press(tea.KeyMsg{Type: tea.KeyTab}, runes("a"))

		queue := h.session.Queue()
		if len(queue) != 3 || queue[0].Name != "b track 2" {
			t.Errorf("expected added songs reversed at the front, got %v", queue)
		}
		if h.model.view != PlaylistView {
			t.Error("adding should keep the picker open")
		}
	})

	t.Run("esc goes back", func(t *testing.T) {
		h := newHarness(t, album("a", 1))
		h.press(tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEsc})
		if h.model.view != PlayerView {
			t.Errorf("esc should return to the player, view is %v", h.model.view)
		}
	})
}

func TestQueueView(t *testing.T) {
	h := newHarness(t)
	h.session.LoadPlaylist(album("a", 3))

	h.press(runes("u"))
	if h.model.view != QueueView {
		t.Fatalf("u should open the queue, view is %v", h.model.view)
	}
	if n := len(h.model.queue.Items()); n != 2 {
		t.Fatalf("expected 2 queued songs listed, got %d", n)
	}

	h.press(tea.KeyMsg{Type: tea.KeyEnter})
	if got := current(t, h.session); got != "a track 2" {
		t.Errorf("enter should play the selected song, got %q", got)
	}
	if history := h.session.History(); len(history) != 1 || history[0].Name != "a track 1" {
		t.Errorf("previous song should move to history, got %v", history)
	}
}

func TestView(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		h := newHarness(t)
		if view := h.model.View(); !strings.Contains(view, "Nothing playing") {
			t.Errorf("expected idle hint, got:\n%s", view)
		}
	})

	t.Run("now playing", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadPlaylist(album("a", 8))

		view := h.model.View()
		for _, want := range []string{"a track 1", "Band a • rock", "Album a", "0:00 / 1:40", "Up next", "+2 more"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view:\n%s", want, view)
			}
		}
	})

	t.Run("virtual playlist", func(t *testing.T) {
		h := newHarness(t)
		h.session.LoadVirtualPlaylist(album("a", 1).Songs)
		if view := h.model.View(); !strings.Contains(view, "Ad-hoc selection") {
			t.Errorf("expected ad-hoc label, got:\n%s", view)
		}
	})

	t.Run("ended", func(t *testing.T) {
		h := newHarness(t)
		h.session.Reproduce(models.Song{Name: "broken"})
		if h.model.now.state != playback.Ended || !strings.Contains(h.model.View(), "ended") {
			t.Errorf("expected ended state, got %v", h.model.now.state)
		}
	})
}
