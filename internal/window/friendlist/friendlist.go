// Package friendlist implements the online-list/block-list toggle window
// described in spec §4.2, grounded on original_source/src/friendlist.c.
package friendlist

import (
	"time"

	"toxterm/internal/filexfer"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
)

// Mode is which of the two lists is on screen.
type Mode int

const (
	ModeOnline Mode = iota
	ModeBlocked
)

// Sink is the friend-list window's EventSink; it owns the toggle, the
// highlighted row, and the block-list file.
type Sink struct {
	window.NoopSink

	Core      network.Core
	Friends   *registry.FriendRegistry
	Blocked   *registry.BlockList
	Transfers *filexfer.Engine
	History   *scrollback.History
	Now       func() time.Time

	Mode      Mode
	Highlight int
}

// New returns a friend-list Sink over the given registries.
func New(core network.Core, friends *registry.FriendRegistry, blocked *registry.BlockList, transfers *filexfer.Engine, history *scrollback.History, now func() time.Time) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{Core: core, Friends: friends, Blocked: blocked, Transfers: transfers, History: history, Now: now}
}

// HistoryHandle exposes the scrollback this window owns, for the command
// executor's uniform /clear handling.
func (s *Sink) HistoryHandle() *scrollback.History { return s.History }

// ToggleMode flips between the online list and the block list, as bound to
// the left/right arrow keys.
func (s *Sink) ToggleMode() {
	if s.Mode == ModeOnline {
		s.Mode = ModeBlocked
	} else {
		s.Mode = ModeOnline
	}
	s.Highlight = 0
}

// Up/Down move the highlighted row, clamped to the current list's length.
func (s *Sink) Up() {
	if s.Highlight > 0 {
		s.Highlight--
	}
}

func (s *Sink) Down() {
	if s.Highlight < s.rowCount()-1 {
		s.Highlight++
	}
}

func (s *Sink) rowCount() int {
	if s.Mode == ModeBlocked {
		return len(s.Blocked.Entries())
	}
	return len(s.Friends.SortedIndex())
}

// HighlightedFriend returns the friend number under the cursor in online
// mode, or ok=false if the list is empty or in block-list mode.
func (s *Sink) HighlightedFriend() (uint32, bool) {
	if s.Mode != ModeOnline {
		return 0, false
	}
	idx := s.Friends.SortedIndex()
	if s.Highlight < 0 || s.Highlight >= len(idx) {
		return 0, false
	}
	return idx[s.Highlight], true
}

// Block copies the highlighted friend's display fields into a new
// block-list slot and deletes the friend, cancelling its transfers (spec
// §4.2: "the friend's display fields ... are copied into a new block-list
// slot and the friend is deleted").
func (s *Sink) Block() error {
	num, ok := s.HighlightedFriend()
	if !ok {
		return nil
	}
	f := s.Friends.Get(num)
	if f == nil {
		return nil
	}
	if err := s.Blocked.Add(registry.BlockEntry{Name: f.Name, PubKey: f.PubKey, LastOnline: f.LastOnline}); err != nil {
		return err
	}
	s.Transfers.CancelAll(num)
	s.Friends.Delete(num)
	s.Friends.Rebuild()
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Blocked %s", f.Name)
	return nil
}

// Unblock removes the highlighted entry from the block list and re-adds it
// via a no-request friend-add (spec §4.2: "Unblocking re-adds the contact
// via a no-request friend-add").
func (s *Sink) Unblock(idx int) error {
	entries := s.Blocked.Entries()
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	e := entries[idx]
	if _, _, err := s.Blocked.Remove(e.PubKey); err != nil {
		return err
	}
	num, err := s.Core.FriendAddNoRequest(e.PubKey)
	if err != nil {
		return err
	}
	s.Friends.Add(&registry.Friend{Number: num, Active: true, PubKey: e.PubKey, Name: e.Name})
	s.Friends.Rebuild()
	return nil
}

// DeleteFriend removes the highlighted friend outright (the modal
// confirmation itself is a UI concern left to the caller), cancelling all
// its transfers first.
func (s *Sink) DeleteFriend() error {
	num, ok := s.HighlightedFriend()
	if !ok {
		return nil
	}
	s.Transfers.CancelAll(num)
	if err := s.Core.FriendDelete(num); err != nil {
		return err
	}
	s.Friends.Delete(num)
	s.Friends.Rebuild()
	return nil
}

func (s *Sink) OnConnectionChange(w *window.Window, status network.ConnStatus) {
	s.Friends.Rebuild()
}

func (s *Sink) OnFriendAdded(w *window.Window, friendNumber uint32) {
	s.Friends.Rebuild()
}
