package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle    key.Binding
	next      key.Binding
	previous  key.Binding
	shuffle   key.Binding
	stop      key.Binding
	rewind    key.Binding
	forward   key.Binding
	playlists key.Binding
	queue     key.Binding
	enter     key.Binding
	add       key.Binding
	back      key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		shuffle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		stop:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		rewind:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "-5%")),
		forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "+5%")),
		playlists: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "playlists")),
		queue:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "up next")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to queue")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.previous, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.stop, k.next, k.previous},
		{k.rewind, k.forward, k.shuffle},
		{k.playlists, k.queue, k.quit},
	}
}
