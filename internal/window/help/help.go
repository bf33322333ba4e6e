// Package help implements the help overlay described in spec §4.2,
// grounded on original_source/src/help.c's HELP_MENU page enum: a child
// window drawn over the active window showing a menu, with one keystroke
// per page.
package help

import "toxterm/internal/window"

// Page identifies one help screen.
type Page int

const (
	PageMenu Page = iota
	PageGlobal
	PageChat
	PageConference
	PageGroup
	PageKeys
)

// pageKeys maps the menu keystroke to the page it opens, mirroring
// help.c's HELP_MENU switch.
var pageKeys = map[rune]Page{
	'g': PageGlobal,
	'c': PageChat,
	'f': PageConference,
	'o': PageGroup,
	'k': PageKeys,
}

// Sink is the help overlay's EventSink; it has no network events to react
// to, only local keystroke navigation.
type Sink struct {
	window.NoopSink

	Page Page
}

// New returns a help Sink starting on the menu page.
func New() *Sink { return &Sink{Page: PageMenu} }

// OnKey transitions the overlay per spec §4.2: a menu keystroke opens a
// specific page; Esc or 'x' exits (the caller deletes the window on
// false); 'm' returns to the menu.
func (s *Sink) OnKey(key rune) (open bool) {
	switch key {
	case 27, 'x':
		return false
	case 'm':
		s.Page = PageMenu
		return true
	default:
		if p, ok := pageKeys[key]; ok && s.Page == PageMenu {
			s.Page = p
		}
		return true
	}
}
