// Package term composes the tiled-character-grid substrate spec §9 assumes
// on top of tcell.Screen: a root screen, rectangular Regions standing in for
// "subwindows", and a small colour-pair table.
package term

import (
	"github.com/gdamore/tcell/v2"
)

// Region is a rectangular sub-area of the screen, the stand-in for the
// source's ncurses subwindows (scrollback pane, status bar, sidebar,
// linewin). Regions do not own a backing buffer; callers write into the
// parent Screen at region-relative coordinates via Screen.PutStr.
type Region struct {
	X, Y, W, H int
}

// Contains reports whether (x, y), in screen coordinates, falls in r.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Inset returns a region shrunk by n cells on every side.
func (r Region) Inset(n int) Region {
	return Region{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

// Screen wraps a tcell.Screen with the layout primitives the window engine
// needs: a status-bar region, a history region and an input-line region
// stacked vertically, recomputed on every resize event.
type Screen struct {
	tcell.Screen

	colors map[ColorPair]tcell.Style
}

// ColorPair names one of the four colour bars spec §3 configures, plus the
// handful of semantic roles the window engine paints in.
type ColorPair int

const (
	ColorDefault ColorPair = iota
	ColorStatusBar
	ColorTabActive
	ColorTabAlertLow
	ColorTabAlertMedium
	ColorTabAlertHigh
	ColorSystem
	ColorError
	ColorIncoming
	ColorOutgoing
	ColorAction
)

// New initializes the terminal in the caller's preferred mode and returns a
// ready-to-use Screen. The caller must call Fini when done.
func New() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	sc := &Screen{Screen: s, colors: defaultPalette()}
	s.SetStyle(tcell.StyleDefault)
	s.EnableMouse()
	return sc, nil
}

func defaultPalette() map[ColorPair]tcell.Style {
	return map[ColorPair]tcell.Style{
		ColorDefault:        tcell.StyleDefault,
		ColorStatusBar:      tcell.StyleDefault.Reverse(true),
		ColorTabActive:      tcell.StyleDefault.Bold(true),
		ColorTabAlertLow:    tcell.StyleDefault.Foreground(tcell.ColorBlue),
		ColorTabAlertMedium: tcell.StyleDefault.Foreground(tcell.ColorYellow),
		ColorTabAlertHigh:   tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
		ColorSystem:         tcell.StyleDefault.Foreground(tcell.ColorGreen),
		ColorError:          tcell.StyleDefault.Foreground(tcell.ColorRed),
		ColorIncoming:       tcell.StyleDefault,
		ColorOutgoing:       tcell.StyleDefault.Foreground(tcell.ColorTeal),
		ColorAction:         tcell.StyleDefault.Foreground(tcell.ColorPurple).Italic(true),
	}
}

// Style resolves a semantic colour pair to a concrete tcell.Style, falling
// back to StyleDefault for an unknown pair.
func (s *Screen) Style(p ColorPair) tcell.Style {
	if st, ok := s.colors[p]; ok {
		return st
	}
	return tcell.StyleDefault
}

// SetPalette replaces the colour table wholesale. Nothing in the tree calls
// it: config hot-reload (cmd/toxterm's reloadConfig) leaves in place the
// table New installed.
func (s *Screen) SetPalette(p map[ColorPair]tcell.Style) {
	s.colors = p
}

// Layout computes the three stacked regions (status bar, history, input
// line) for the current screen size. Returns (status, history, input).
// Terminal-too-small is signalled by a history region with H < 1.
func (s *Screen) Layout() (status, history, input Region) {
	w, h := s.Size()
	status = Region{X: 0, Y: 0, W: w, H: 1}
	input = Region{X: 0, Y: h - 1, W: w, H: 1}
	history = Region{X: 0, Y: 1, W: w, H: h - 2}
	return
}

// PutStr writes s into region r at relative coordinates (x, y) with style
// st, clipping to the region's bounds.
func (s *Screen) PutStr(r Region, x, y int, str string, st tcell.Style) {
	if y < 0 || y >= r.H {
		return
	}
	col := r.X + x
	for _, ch := range str {
		if x < 0 {
			x++
			col++
			continue
		}
		if x >= r.W {
			return
		}
		s.SetContent(col, r.Y+y, ch, nil, st)
		x++
		col++
	}
}
