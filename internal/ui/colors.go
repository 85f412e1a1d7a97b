package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/phono/internal/playback"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	muted lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		muted: NewStyle(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// stateBadge renders the transport state with an icon and its color.
func (p *Palette) stateBadge(s playback.State) string {
	switch s {
	case playback.Playing:
		return p.ok.Render("▶ playing")
	case playback.Paused:
		return p.warn.Render("⏸ paused")
	case playback.Loading:
		return p.warn.Render("… loading")
	case playback.Ended:
		return p.err.Render("■ ended")
	default:
		return p.muted.Render("idle")
	}
}
