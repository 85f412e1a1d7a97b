package playback

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/desertthunder/phono/internal/models"
)

// Shuffler produces random traversal orders over a song list.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler uses src for randomness, or a time-seeded PCG when src is nil.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>32|seed<<32)
	}
	return &Shuffler{rng: rand.New(src)}
}

// Order returns a Fisher-Yates permutation of songs. The input is not modified.
func (s *Shuffler) Order(songs []models.Song) []models.Song {
	out := make([]models.Song, len(songs))
	copy(out, songs)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
