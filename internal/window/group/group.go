// Package group implements the decentralized-group window described in
// spec §4.2, grounded on original_source/src/groupchats.c: like conference
// but with role sorting, an ignore list, private messages, moderation
// events, and privacy/topic-lock/voice-state changes.
package group

import (
	"time"

	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
)

// Sink is a decentralized-group window's EventSink.
type Sink struct {
	window.NoopSink

	Core    network.Core
	Group   *registry.Group
	History *scrollback.History
	Now     func() time.Time
}

// New returns a group Sink.
func New(core network.Core, g *registry.Group, history *scrollback.History, now func() time.Time) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{Core: core, Group: g, History: history, Now: now}
}

// HistoryHandle exposes the scrollback this window owns, for the command
// executor's uniform /clear handling.
func (s *Sink) HistoryHandle() *scrollback.History { return s.History }

func (s *Sink) peer(peerID uint32) *registry.GroupPeer { return s.Group.Peers[peerID] }

func (s *Sink) peerName(peerID uint32) string {
	if p := s.peer(peerID); p != nil {
		return p.Name
	}
	return "Unknown"
}

// OnGroupMessage appends an incoming group message, applying the
// out-of-band ignore filter by peer id.
func (s *Sink) OnGroupMessage(w *window.Window, peerID uint32, kind network.MessageType, text string) {
	if p := s.peer(peerID); p != nil && p.Ignored {
		return
	}
	typ := scrollback.LineIncoming
	if kind == network.MessageAction {
		typ = scrollback.LineAction
	}
	s.History.Add(s.Now(), typ, scrollback.Attr{}, s.peerName(peerID), "", "%s", text)
}

// OnGroupPrivateMessage appends an incoming whisper with its own line type.
func (s *Sink) OnGroupPrivateMessage(w *window.Window, peerID uint32, text string) {
	if p := s.peer(peerID); p != nil && p.Ignored {
		return
	}
	s.History.Add(s.Now(), scrollback.LinePrivateIncoming, scrollback.Attr{}, s.peerName(peerID), "", "%s", text)
}

// SendPrivateMessage sends a whisper and records the outgoing line.
func (s *Sink) SendPrivateMessage(peerID uint32, text string) error {
	if err := s.Core.GroupSendPrivateMessage(s.Group.Number, peerID, text); err != nil {
		return err
	}
	s.History.Add(s.Now(), scrollback.LinePrivateOutgoing, scrollback.Attr{}, s.peerName(peerID), "", "%s", text)
	return nil
}

// OnGroupPeerJoin adds the peer to the table and rebuilds the role-sorted
// index.
func (s *Sink) OnGroupPeerJoin(w *window.Window, peerID uint32) {
	if _, ok := s.Group.Peers[peerID]; !ok {
		s.Group.Peers[peerID] = &registry.GroupPeer{Active: true, PeerID: peerID, Role: network.RoleUser, LastActive: s.Now()}
	}
	s.Group.RebuildIndex()
	s.History.Add(s.Now(), scrollback.LineConnection, scrollback.Attr{}, s.peerName(peerID), "", "%s has joined the group", s.peerName(peerID))
}

// OnGroupPeerExit removes the peer and rebuilds the index.
func (s *Sink) OnGroupPeerExit(w *window.Window, peerID uint32, message string) {
	name := s.peerName(peerID)
	delete(s.Group.Peers, peerID)
	s.Group.RebuildIndex()
	s.History.Add(s.Now(), scrollback.LineDisconnection, scrollback.Attr{}, name, "", "%s has left the group (%s)", name, message)
}

// OnGroupTopic writes a topic-change line.
func (s *Sink) OnGroupTopic(w *window.Window, peerID uint32, topic string) {
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s set the topic to: %s", s.peerName(peerID), topic)
}

// OnGroupPeerLimit records the new peer limit.
func (s *Sink) OnGroupPeerLimit(w *window.Window, limit uint32) {
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Peer limit set to %d", limit)
}

// OnGroupPrivacyState records a public/private change.
func (s *Sink) OnGroupPrivacyState(w *window.Window, public bool) {
	state := "private"
	if public {
		state = "public"
	}
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Group is now %s", state)
}

// OnGroupTopicLock records a topic-lock change.
func (s *Sink) OnGroupTopicLock(w *window.Window, locked bool) {
	state := "unlocked"
	if locked {
		state = "locked"
	}
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Topic is now %s", state)
}

// OnGroupPassword records a password change without printing the password.
func (s *Sink) OnGroupPassword(w *window.Window, password string) {
	if password == "" {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Password removed")
		return
	}
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Password set")
}

// OnGroupNickChange renames the peer and rebuilds the sorted index.
func (s *Sink) OnGroupNickChange(w *window.Window, peerID uint32, name string) {
	p := s.peer(peerID)
	if p == nil {
		return
	}
	old := p.Name
	p.PrevName = old
	p.Name = name
	s.Group.RebuildIndex()
	s.History.Add(s.Now(), scrollback.LineNameChange, scrollback.Attr{}, old, name, "%s is now known as %s", old, name)
}

// OnGroupStatusChange updates a peer's presence status.
func (s *Sink) OnGroupStatusChange(w *window.Window, peerID uint32, status network.UserStatus) {
	if p := s.peer(peerID); p != nil {
		p.Status = status
	}
}

// OnGroupSelfJoin prints a "Joined group" line naming the group. It does
// not fetch or display the group's current topic; network.Core has no
// topic getter.
func (s *Sink) OnGroupSelfJoin(w *window.Window) {
	s.History.Add(s.Now(), scrollback.LineConnection, scrollback.Attr{}, "", "", "Joined group %s", s.Group.Name)
}

// OnGroupRejected prints why the join attempt was refused.
func (s *Sink) OnGroupRejected(w *window.Window, reason string) {
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Join rejected: %s", reason)
}

// OnGroupModeration applies a mod event (kick/observer/user/moderator) to
// the target peer's role and prints a line.
func (s *Sink) OnGroupModeration(w *window.Window, sourceID, targetID uint32, role network.GroupRole) {
	target := s.peer(targetID)
	if target == nil {
		return
	}
	target.Role = role
	s.Group.RebuildIndex()
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s set %s's role to %s", s.peerName(sourceID), s.peerName(targetID), roleName(role))
}

// OnGroupVoiceState records a voice-state change.
func (s *Sink) OnGroupVoiceState(w *window.Window, everyone bool) {
	state := "moderators only"
	if everyone {
		state = "everyone"
	}
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Voice state: %s", state)
}

// Ignore applies the ignore flag both out-of-band on the local peer table
// and in-band via the network layer's self-ignore call (spec §4.5).
func (s *Sink) Ignore(peerID uint32, ignored bool) error {
	s.Group.SetIgnore(peerID, ignored)
	return s.Core.GroupSelfSetIgnore(s.Group.Number, peerID, ignored)
}

// Kick removes a peer from the group over the network layer.
func (s *Sink) Kick(peerID uint32) error {
	return s.Core.GroupKick(s.Group.Number, peerID)
}

func roleName(role network.GroupRole) string {
	switch role {
	case network.RoleFounder:
		return "founder"
	case network.RoleModerator:
		return "moderator"
	case network.RoleObserver:
		return "observer"
	default:
		return "user"
	}
}

// Close leaves the group.
func (s *Sink) Close(w *window.Window) {
	s.Core.GroupLeave(s.Group.Number, "")
}
