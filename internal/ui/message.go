package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/playback"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgState MsgKind = iota
	MsgProgress
)

// nowPlaying is the session as seen from its controlling context when an event fired.
type nowPlaying struct {
	state    playback.State
	song     *models.Song
	playlist *models.Playlist
	shuffle  bool
	progress float64
	position time.Duration
	duration time.Duration
	upNext   []models.Song
	played   int
}

// elapsed carries a progress tick.
type elapsed struct {
	progress float64
	position time.Duration
	duration time.Duration
}

// stateMsg is the constructor for [MsgState]
func stateMsg(np nowPlaying) Msg {
	return Msg{kind: MsgState, data: np}
}

// progressMsg is the constructor for [MsgProgress]
func progressMsg(progress float64, position, duration time.Duration) Msg {
	return Msg{kind: MsgProgress, data: elapsed{progress, position, duration}}
}

// Forward subscribes to the session's bus and relays every event to send, normally
// [tea.Program.Send]. Listeners run on the session's controlling context, so reading the
// session here is safe; the model only ever sees the copies.
func Forward(session *playback.Session, send func(tea.Msg)) playback.SubscriptionID {
	return session.Subscribe(playback.ListenerFuncs{
		State: func(e playback.StateEvent) {
			pos, dur := session.Elapsed()
			send(stateMsg(nowPlaying{
				state:    e.State,
				song:     e.Song,
				playlist: e.Playlist,
				shuffle:  session.Shuffle(),
				progress: e.Progress,
				position: pos,
				duration: dur,
				upNext:   session.Queue(),
				played:   len(session.History()),
			}))
		},
		Progress: func(e playback.ProgressEvent) {
			pos, dur := session.Elapsed()
			send(progressMsg(e.Progress, pos, dur))
		},
	})
}
