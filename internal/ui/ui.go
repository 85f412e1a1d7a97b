package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/phono/internal/formatter"
	"github.com/desertthunder/phono/internal/models"
	"github.com/desertthunder/phono/internal/playback"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlayerView ViewState = iota
	PlaylistView
	QueueView
)

const (
	seekStep    = 0.05
	upNextShown = 5
	maxBarWidth = 60
)

// Model represents the TUI application state.
type Model struct {
	session   *playback.Session
	dispatch  playback.Dispatcher
	view      ViewState
	width     int
	height    int
	now       nowPlaying
	catalog   []models.Playlist
	playlists list.Model
	queue     list.Model
	bar       progress.Model
	help      help.Model
	keys      keyMap
}

// NewModel creates the TUI model. Every transport command is run through dispatch,
// which must execute it on the session's controlling context. catalog feeds the
// playlist picker and may be empty.
func NewModel(session *playback.Session, dispatch playback.Dispatcher, catalog []models.Playlist) *Model {
	playlists := list.New(playlistItems(catalog), list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Playlists"

	queue := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	queue.Title = "Up Next"

	return &Model{
		session:   session,
		dispatch:  dispatch,
		view:      PlayerView,
		catalog:   catalog,
		playlists: playlists,
		queue:     queue,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init sets the terminal title; playback is started by whoever owns the session.
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("phono")
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-20, 10), maxBarWidth)
		m.playlists.SetSize(msg.Width-4, msg.Height-4)
		m.queue.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		case QueueView:
			return m.handleQueueKeys(msg)
		default:
			return m.handlePlayerKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgState:
			m.now = msg.data.(nowPlaying)
			return m, m.queue.SetItems(songItems(m.now.upNext))
		case MsgProgress:
			e := msg.data.(elapsed)
			m.now.progress = e.progress
			m.now.position = e.position
			m.now.duration = e.duration
			return m, nil
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistView:
		return m.renderList(m.playlists, m.keys.enter, m.keys.add, m.keys.back, m.keys.quit)
	case QueueView:
		return m.renderList(m.queue, m.keys.enter, m.keys.back, m.keys.quit)
	default:
		return m.renderPlayer()
	}
}

// control runs fn against the session on its controlling context.
func (m *Model) control(fn func(s *playback.Session)) {
	s := m.session
	m.dispatch(func() { fn(s) })
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		m.control((*playback.Session).TogglePause)
	case key.Matches(msg, m.keys.next):
		m.control((*playback.Session).Next)
	case key.Matches(msg, m.keys.previous):
		m.control((*playback.Session).Previous)
	case key.Matches(msg, m.keys.stop):
		m.control((*playback.Session).Stop)
	case key.Matches(msg, m.keys.shuffle):
		m.control(func(s *playback.Session) { s.SetShuffle(!s.Shuffle()) })
	case key.Matches(msg, m.keys.rewind):
		m.control(func(s *playback.Session) { s.Seek(s.Progress() - seekStep) })
	case key.Matches(msg, m.keys.forward):
		m.control(func(s *playback.Session) { s.Seek(s.Progress() + seekStep) })
	case key.Matches(msg, m.keys.playlists):
		m.view = PlaylistView
	case key.Matches(msg, m.keys.queue):
		m.view = QueueView
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlists.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlayerView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.playlists.SelectedItem().(playlistItem); ok {
			p := item.playlist
			m.control(func(s *playback.Session) { s.LoadPlaylist(p) })
			m.view = PlayerView
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		if item, ok := m.playlists.SelectedItem().(playlistItem); ok {
			songs := item.playlist.Snapshot().Songs
			m.control(func(s *playback.Session) { s.AddToQueue(songs...) })
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleQueueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.queue.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlayerView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.queue.SelectedItem().(songItem); ok {
			song := item.song
			m.control(func(s *playback.Session) { s.PushReproduce(song) })
			m.view = PlayerView
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistView:
		m.playlists, cmd = m.playlists.Update(msg)
	case QueueView:
		m.queue, cmd = m.queue.Update(msg)
	}
	return m, cmd
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderPlayer() string {
	var b strings.Builder

	header := "phono  " + styles.stateBadge(m.now.state)
	if m.now.shuffle {
		header += "  " + styles.warn.Render("shuffle")
	}
	b.WriteString(styles.title.Render(header))
	b.WriteString("\n")

	if m.now.song == nil {
		b.WriteString(styles.muted.Render("Nothing playing. Press tab to pick a playlist."))
		b.WriteString("\n")
	} else {
		song := m.now.song
		b.WriteString(styles.ok.Render(song.Name))
		b.WriteString("\n")
		b.WriteString(songItem{song: *song}.Description())
		b.WriteString("\n\n")
		b.WriteString(m.bar.ViewAs(m.now.progress))
		fmt.Fprintf(&b, "  %s / %s\n", formatter.FormatDuration(m.now.position), formatter.FormatDuration(m.now.duration))
	}

	if p := m.now.playlist; p != nil {
		name := p.Name
		if p.IsVirtual() {
			name = "Ad-hoc selection"
		}
		fmt.Fprintf(&b, "\n%s %s (%d songs, %d played)\n", styles.muted.Render("From"), name, p.Len(), m.now.played)
	}

	if len(m.now.upNext) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.muted.Render("Up next"))
		b.WriteString("\n")
		for i, song := range m.now.upNext[:min(len(m.now.upNext), upNextShown)] {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, formatter.Truncate(song.String(), 50))
		}
		if extra := len(m.now.upNext) - upNextShown; extra > 0 {
			fmt.Fprintf(&b, "  %s\n", styles.muted.Render(fmt.Sprintf("+%d more", extra)))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
