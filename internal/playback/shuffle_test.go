package playback

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/phono/internal/models"
)

func TestShuffler(t *testing.T) {
	songs := []models.Song{song("a"), song("b"), song("c"), song("d"), song("e"), song("f"), song("g")}

	t.Run("returns a permutation without touching the input", func(t *testing.T) {
		original := slices.Clone(songs)
		out := NewShuffler(rand.NewPCG(1, 1)).Order(songs)

		if !slices.EqualFunc(songs, original, models.Song.Equal) {
			t.Error("input was modified")
		}
		got := names(out)
		slices.Sort(got)
		if !slices.Equal(got, names(songs)) {
			t.Errorf("expected a permutation, got %v", names(out))
		}
	})

	t.Run("is deterministic for a seeded source", func(t *testing.T) {
		a := NewShuffler(rand.NewPCG(9, 9)).Order(songs)
		b := NewShuffler(rand.NewPCG(9, 9)).Order(songs)

		if !slices.Equal(names(a), names(b)) {
			t.Errorf("expected equal orders, got %v and %v", names(a), names(b))
		}
	})

	t.Run("varies between calls", func(t *testing.T) {
		sh := NewShuffler(rand.NewPCG(4, 2))
		seen := map[string]bool{}
		for range 10 {
			seen[strings.Join(names(sh.Order(songs)), "")] = true
		}
		if len(seen) < 2 {
			t.Error("expected different orders across calls")
		}
	})

	t.Run("handles short inputs", func(t *testing.T) {
		sh := NewShuffler(nil)
		if out := sh.Order(nil); len(out) != 0 {
			t.Errorf("expected empty order, got %v", out)
		}
		if out := sh.Order(songs[:1]); len(out) != 1 || out[0].Name != "a" {
			t.Errorf("expected [a], got %v", names(out))
		}
	})
}
