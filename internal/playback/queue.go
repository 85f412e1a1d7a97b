package playback

import (
	"slices"

	"github.com/desertthunder/phono/internal/models"
)

// priority tags songs inserted with [Queue.PushFront]. Playlist fills never use it.
const priority generation = 0

type generation uint64

type entry struct {
	song models.Song
	gen  generation
}

// Queue holds the pending songs and the history stack.
//
// Every [Queue.Fill] tags its entries with a fresh generation, so
// [Queue.ClearFromPlaylist] removes exactly what the latest fill of that
// playlist contributed, wherever those entries now sit.
type Queue struct {
	shuffler *Shuffler
	entries  []entry
	history  []models.Song
	lastGen  generation
	fills    map[string]generation
}

// NewQueue creates an empty queue drawing shuffled orders from shuffler.
func NewQueue(shuffler *Shuffler) *Queue {
	if shuffler == nil {
		shuffler = NewShuffler(nil)
	}
	return &Queue{shuffler: shuffler, fills: make(map[string]generation)}
}

// playlistKey identifies a playlist across snapshots.
func playlistKey(p models.Playlist) string {
	if p.ID != "" {
		return "id:" + p.ID
	}
	return "name:" + p.Name
}

// Fill appends the playlist's songs to the tail, shuffled when requested.
// Empty playlists are a no-op.
func (q *Queue) Fill(p models.Playlist, shuffled bool) {
	if p.IsEmpty() {
		return
	}

	songs := p.Songs
	if shuffled {
		songs = q.shuffler.Order(songs)
	}

	q.lastGen++
	q.fills[playlistKey(p)] = q.lastGen
	for _, s := range songs {
		q.entries = append(q.entries, entry{song: s, gen: q.lastGen})
	}
}

// ClearFromPlaylist removes the entries added by the latest fill of p.
// Priority inserts and other playlists' entries are kept.
func (q *Queue) ClearFromPlaylist(p models.Playlist) {
	key := playlistKey(p)
	gen, ok := q.fills[key]
	if !ok {
		return
	}
	delete(q.fills, key)

	q.entries = slices.DeleteFunc(q.entries, func(e entry) bool { return e.gen == gen })
}

// PushFront inserts song at the head of the queue.
func (q *Queue) PushFront(song models.Song) {
	q.entries = slices.Insert(q.entries, 0, entry{song: song, gen: priority})
}

// PopFront removes and returns the head of the queue.
func (q *Queue) PopFront() (models.Song, bool) {
	if len(q.entries) == 0 {
		return models.Song{}, false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head.song, true
}

// PushHistory records song as previously played, unless it already tops the stack.
func (q *Queue) PushHistory(song models.Song) {
	if n := len(q.history); n > 0 && q.history[n-1].Equal(song) {
		return
	}
	q.history = append(q.history, song)
}

// PopHistory removes and returns the most recently displaced song.
func (q *Queue) PopHistory() (models.Song, bool) {
	n := len(q.history)
	if n == 0 {
		return models.Song{}, false
	}
	song := q.history[n-1]
	q.history = q.history[:n-1]
	return song, true
}

func (q *Queue) IsEmpty() bool        { return len(q.entries) == 0 }
func (q *Queue) HistoryIsEmpty() bool { return len(q.history) == 0 }
func (q *Queue) Len() int             { return len(q.entries) }

// Songs returns a copy of the pending songs, head first.
func (q *Queue) Songs() []models.Song {
	out := make([]models.Song, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.song
	}
	return out
}

// History returns a copy of the history stack, oldest first.
func (q *Queue) History() []models.Song {
	return slices.Clone(q.history)
}

// Reset empties both the queue and the history.
func (q *Queue) Reset() {
	q.entries = nil
	q.history = nil
	clear(q.fills)
}
