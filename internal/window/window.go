// Package window implements the window registry and dispatcher from spec
// §4.1, grounded on rustyguts-bken/client/app.go's wireSessionCallbacks:
// the same one-function-per-event fan-out shape, generalized from "one
// Wails event per callback" to "call the optional handler method on every
// window whose type opts in and whose num matches" — the WindowEventSink
// capability interface spec §9 calls out.
package window

import (
	"github.com/google/uuid"

	"toxterm/internal/notify"
)

// Kind is the one-byte window type tag from spec §3.
type Kind int

const (
	KindPrompt Kind = iota
	KindFriendList
	KindFriendChat
	KindConference
	KindGroup
	KindHelp
	KindGame
)

// ErrWindowLimit and ErrTerminalTooSmall name the two add_window failure
// modes spec §4.1 defines.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrWindowLimit      Error = "window-limit"
	ErrTerminalTooSmall Error = "terminal-too-small"
)

// MinRows/MinCols are the terminal size floor spec §4.1 names ("four rows
// / any positive columns").
const (
	MinRows = 4
	MinCols = 1
)

// Window is a handle with the fixed fields spec §3 names; Sink carries the
// type-specific event handlers and Content the polymorphic substate.
type Window struct {
	ID        uint16
	SessionID uuid.UUID // stable correlation id for this window's lifetime, for log lines and test fixtures
	Kind      Kind
	Num       uint32 // friend/group/conference number payload
	Name      string
	TabColor int
	Alert    notify.AlertLevel
	Pending  int
	ShowPeerList bool
	ScrollPause  bool
	IsCall       bool

	Sink EventSink
}

// raiseAlert sets the window's alert level only if higher-severity and
// bumps the pending-message counter, per spec §4.1's alert protocol.
func (w *Window) raiseAlert(level notify.AlertLevel) {
	if level > w.Alert {
		w.Alert = level
	}
	w.Pending++
}

// Activate clears both the alert level and the pending counter, per spec
// §4.1 ("when the user activates a window, both are cleared") and the
// testable invariant in spec §8 (pending_messages == 0 for the active
// window).
func (w *Window) Activate() {
	w.Alert = notify.AlertNone
	w.Pending = 0
}
