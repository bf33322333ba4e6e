// Package conference implements the legacy audio/text conference window
// described in spec §4.2, grounded on original_source/src/conference.c.
package conference

import (
	"time"

	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
)

// Sink is a conference window's EventSink.
type Sink struct {
	window.NoopSink

	Core       network.Core
	Conference *registry.Conference
	History    *scrollback.History
	Now        func() time.Time
}

// New returns a conference Sink.
func New(core network.Core, conf *registry.Conference, history *scrollback.History, now func() time.Time) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{Core: core, Conference: conf, History: history, Now: now}
}

// HistoryHandle exposes the scrollback this window owns, for the command
// executor's uniform /clear handling.
func (s *Sink) HistoryHandle() *scrollback.History { return s.History }

// OnConferenceNameListChange re-queries the peer table and diffs it
// against the previous snapshot: genuinely new peers (outside the
// startup-sync debounce) print a join line, disappeared peers print a
// leave line.
func (s *Sink) OnConferenceNameListChange(w *window.Window) {
	before := make(map[network.PublicKey]string, len(s.Conference.Peers))
	for _, p := range s.Conference.Peers {
		if p != nil && p.Active {
			before[p.PubKey] = p.Name
		}
	}

	count, err := s.Core.ConferencePeerCount(s.Conference.ID)
	if err != nil {
		return
	}
	fresh := s.Conference.UpdatePeerList(int(count), func(i int) (network.PublicKey, uint32, string) {
		pk, _ := s.Core.ConferencePeerPubKey(s.Conference.ID, uint32(i))
		name, _ := s.Core.ConferencePeerName(s.Conference.ID, uint32(i))
		return pk, uint32(i), name
	})

	within := s.Now().Sub(s.Conference.StartTime) <= registry.JoinDebounce
	for _, i := range fresh {
		p := s.Conference.Peers[i]
		if !within {
			s.History.Add(s.Now(), scrollback.LineConnection, scrollback.Attr{}, p.Name, "", "%s has joined the conference", p.Name)
		}
		s.positionAudioPeer(p, len(fresh))
	}

	after := make(map[network.PublicKey]bool, len(s.Conference.Peers))
	for _, p := range s.Conference.Peers {
		if p != nil && p.Active {
			after[p.PubKey] = true
		}
	}
	for pk, name := range before {
		if !after[pk] {
			s.History.Add(s.Now(), scrollback.LineDisconnection, scrollback.Attr{}, name, "", "%s has left the conference", name)
		}
	}
}

// positionAudioPeer, when the conference has audio enabled, sets the
// peer's OutputDevice to its peer number modulo n (n being the number of
// peers new in this update). No angle or arc position is computed.
func (s *Sink) positionAudioPeer(p *registry.ConferencePeer, n int) {
	if !s.Conference.AudioEnabled || n == 0 {
		return
	}
	p.OutputDevice = int(p.Number) % n
}

// OnConferenceMessage appends an incoming conference line.
func (s *Sink) OnConferenceMessage(w *window.Window, peerNumber uint32, kind network.MessageType, text string) {
	name := s.peerName(peerNumber)
	typ := scrollback.LineIncoming
	if kind == network.MessageAction {
		typ = scrollback.LineAction
	}
	s.History.Add(s.Now(), typ, scrollback.Attr{}, name, "", "%s", text)
}

// OnConferencePeerName updates the sidebar entry for one peer by index.
func (s *Sink) OnConferencePeerName(w *window.Window, peerNumber uint32, name string) {
	for _, p := range s.Conference.Peers {
		if p != nil && p.Number == peerNumber {
			p.Name = name
			return
		}
	}
}

// OnConferenceTitle updates the conference title and window name.
func (s *Sink) OnConferenceTitle(w *window.Window, peerNumber uint32, title string) {
	s.Conference.Title = title
	w.Name = title
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Title changed to %s", title)
}

func (s *Sink) peerName(peerNumber uint32) string {
	for _, p := range s.Conference.Peers {
		if p != nil && p.Number == peerNumber {
			return p.Name
		}
	}
	return "Unknown"
}

// Close leaves the conference over the network layer.
func (s *Sink) Close(w *window.Window) {
	s.Core.ConferenceDelete(s.Conference.ID)
}
