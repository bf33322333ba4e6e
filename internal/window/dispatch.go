package window

import (
	"toxterm/internal/network"
	"toxterm/internal/notify"
)

// Dispatcher walks the registry's window list and invokes the optional
// handler on each window whose type opts in and whose Num field matches
// the event, implementing spec §4.1's for_each_with_handler. It also
// applies the alert protocol: for the events that alert, the Dispatch
// method raises the target window's alert to that event's fixed level,
// only if higher-severity, and bumps its pending counter.
type Dispatcher struct {
	Registry *Registry
}

// NewDispatcher binds a Dispatcher to a Registry.
func NewDispatcher(r *Registry) *Dispatcher { return &Dispatcher{Registry: r} }

// DispatchFriendMessage fans out an incoming friend message to the
// matching friend-chat window.
func (d *Dispatcher) DispatchFriendMessage(friendNumber uint32, kind network.MessageType, text string) {
	w := d.Registry.ByNum(KindFriendChat, friendNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnMessage(w, kind, text)
	d.alert(w, notify.AlertHigh)
}

// alert raises w's alert level, only if higher-severity, and bumps its
// pending-message counter, unless w is the currently active window (spec
// §8's invariant that the active window's pending counter is always 0).
func (d *Dispatcher) alert(w *Window, level notify.AlertLevel) {
	if w == d.Registry.Active() {
		d.Registry.SetRefresh()
		return
	}
	w.raiseAlert(level)
	d.Registry.SetRefresh()
}

// DispatchFriendConnectionChange fans out a friend connection-status
// change to its chat window (if any) and to the friend-list window(s).
func (d *Dispatcher) DispatchFriendConnectionChange(friendNumber uint32, status network.ConnStatus) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnConnectionChange(w, status)
	}
	for _, w := range d.Registry.ByKind(KindFriendList) {
		if w.Sink != nil {
			w.Sink.OnConnectionChange(w, status)
		}
	}
	d.Registry.SetRefresh()
}

// DispatchFriendRequest fans out an inbound friend request to the prompt
// window.
func (d *Dispatcher) DispatchFriendRequest(pk network.PublicKey, message string) {
	for _, w := range d.Registry.ByKind(KindPrompt) {
		if w.Sink != nil {
			w.Sink.OnFriendRequest(w, pk, message)
		}
	}
	d.Registry.SetRefresh()
}

// DispatchReadReceipt fans out a read-receipt event to the matching
// friend-chat window.
func (d *Dispatcher) DispatchReadReceipt(friendNumber uint32, receipt network.ReceiptID) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnReadReceipt(w, receipt)
		d.Registry.SetRefresh()
	}
}

// DispatchFileChunkRequest fans out to the owning friend-chat window.
func (d *Dispatcher) DispatchFileChunkRequest(friendNumber, filenumber uint32, position uint64, length int) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnFileChunkRequest(w, filenumber, position, length)
	}
}

// DispatchFileRecvChunk fans out to the owning friend-chat window.
func (d *Dispatcher) DispatchFileRecvChunk(friendNumber, filenumber uint32, position uint64, data []byte) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnFileRecvChunk(w, filenumber, position, data)
	}
}

// DispatchFileControl fans out to the owning friend-chat window.
func (d *Dispatcher) DispatchFileControl(friendNumber, filenumber uint32, ctl network.FileControl) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnFileControl(w, filenumber, ctl)
	}
}

// DispatchFileRecv fans out to the owning friend-chat window and raises
// its alert if inactive.
func (d *Dispatcher) DispatchFileRecv(friendNumber, filenumber uint32, kind network.FileKind, size uint64, fileID network.FileID, name string) {
	w := d.Registry.ByNum(KindFriendChat, friendNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnFileRecv(w, filenumber, kind, size, fileID, name)
	d.alert(w, notify.AlertMedium)
}

// DispatchConferenceMessage fans out to the matching conference window.
func (d *Dispatcher) DispatchConferenceMessage(conferenceNumber, peerNumber uint32, kind network.MessageType, text string) {
	w := d.Registry.ByNum(KindConference, conferenceNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnConferenceMessage(w, peerNumber, kind, text)
	d.alert(w, notify.AlertMedium)
}

// DispatchConferenceNameListChange fans out a peer-list-changed event.
func (d *Dispatcher) DispatchConferenceNameListChange(conferenceNumber uint32) {
	if w := d.Registry.ByNum(KindConference, conferenceNumber); w != nil && w.Sink != nil {
		w.Sink.OnConferenceNameListChange(w)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupMessage fans out to the matching group window.
func (d *Dispatcher) DispatchGroupMessage(groupNumber, peerID uint32, kind network.MessageType, text string) {
	w := d.Registry.ByNum(KindGroup, groupNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnGroupMessage(w, peerID, kind, text)
	d.alert(w, notify.AlertMedium)
}

// DispatchGroupPrivateMessage fans out a whisper to the matching group
// window.
func (d *Dispatcher) DispatchGroupPrivateMessage(groupNumber, peerID uint32, text string) {
	w := d.Registry.ByNum(KindGroup, groupNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnGroupPrivateMessage(w, peerID, text)
	d.alert(w, notify.AlertMedium)
}

// DispatchFriendTyping fans out a typing-indicator change to the friend's
// chat window.
func (d *Dispatcher) DispatchFriendTyping(friendNumber uint32, typing bool) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnTypingChange(w, typing)
		d.Registry.SetRefresh()
	}
}

// DispatchFriendName fans out a nick change to the friend's chat window.
func (d *Dispatcher) DispatchFriendName(friendNumber uint32, name string) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnNickChange(w, name)
		d.Registry.SetRefresh()
	}
}

// DispatchFriendStatus fans out a friend's user-status change.
func (d *Dispatcher) DispatchFriendStatus(friendNumber uint32, status network.UserStatus) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnStatusChange(w, status)
		d.Registry.SetRefresh()
	}
}

// DispatchFriendStatusMessage fans out a friend's status-message change.
func (d *Dispatcher) DispatchFriendStatusMessage(friendNumber uint32, msg string) {
	if w := d.Registry.ByNum(KindFriendChat, friendNumber); w != nil && w.Sink != nil {
		w.Sink.OnStatusMessageChange(w, msg)
		d.Registry.SetRefresh()
	}
}

// DispatchConferenceInvite fans out an inbound conference invite to the
// inviting friend's chat window, which holds the pending-invite slot that
// /cjoin later consumes (spec §3).
func (d *Dispatcher) DispatchConferenceInvite(friendNumber, conferenceNumber uint32, kind network.ConferenceKind, cookie []byte) {
	w := d.Registry.ByNum(KindFriendChat, friendNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnConferenceInvite(w, friendNumber, kind, cookie)
	d.alert(w, notify.AlertLow)
}

// DispatchGroupInvite fans out an inbound group invite to the inviting
// friend's chat window, which holds the pending-invite slot that /gaccept
// later consumes (spec §3).
func (d *Dispatcher) DispatchGroupInvite(friendNumber uint32, chatID [32]byte, password string) {
	w := d.Registry.ByNum(KindFriendChat, friendNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnGroupInvite(w, chatID, password)
	d.alert(w, notify.AlertLow)
}

// DispatchConferencePeerName fans out a single peer's name change to the
// matching conference window.
func (d *Dispatcher) DispatchConferencePeerName(conferenceNumber, peerNumber uint32, name string) {
	if w := d.Registry.ByNum(KindConference, conferenceNumber); w != nil && w.Sink != nil {
		w.Sink.OnConferencePeerName(w, peerNumber, name)
		d.Registry.SetRefresh()
	}
}

// DispatchConferenceTitle fans out a title change to the matching
// conference window.
func (d *Dispatcher) DispatchConferenceTitle(conferenceNumber, peerNumber uint32, title string) {
	if w := d.Registry.ByNum(KindConference, conferenceNumber); w != nil && w.Sink != nil {
		w.Sink.OnConferenceTitle(w, peerNumber, title)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupPeerJoin fans out a peer-join event to the matching group
// window and raises its alert.
func (d *Dispatcher) DispatchGroupPeerJoin(groupNumber, peerID uint32) {
	w := d.Registry.ByNum(KindGroup, groupNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnGroupPeerJoin(w, peerID)
	d.alert(w, notify.AlertLow)
}

// DispatchGroupPeerExit fans out a peer-exit event to the matching group
// window.
func (d *Dispatcher) DispatchGroupPeerExit(groupNumber, peerID uint32, message string) {
	w := d.Registry.ByNum(KindGroup, groupNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnGroupPeerExit(w, peerID, message)
	d.alert(w, notify.AlertLow)
}

// DispatchGroupTopic fans out a topic change to the matching group window.
func (d *Dispatcher) DispatchGroupTopic(groupNumber, peerID uint32, topic string) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupTopic(w, peerID, topic)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupPeerLimit fans out a peer-limit change to the matching
// group window.
func (d *Dispatcher) DispatchGroupPeerLimit(groupNumber uint32, limit uint32) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupPeerLimit(w, limit)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupPrivacyState fans out a public/private change to the
// matching group window.
func (d *Dispatcher) DispatchGroupPrivacyState(groupNumber uint32, public bool) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupPrivacyState(w, public)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupTopicLock fans out a topic-lock change to the matching
// group window.
func (d *Dispatcher) DispatchGroupTopicLock(groupNumber uint32, locked bool) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupTopicLock(w, locked)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupPassword fans out a password change to the matching group
// window.
func (d *Dispatcher) DispatchGroupPassword(groupNumber uint32, password string) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupPassword(w, password)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupNickChange fans out a peer nick change to the matching
// group window.
func (d *Dispatcher) DispatchGroupNickChange(groupNumber, peerID uint32, name string) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupNickChange(w, peerID, name)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupStatusChange fans out a peer user-status change to the
// matching group window.
func (d *Dispatcher) DispatchGroupStatusChange(groupNumber, peerID uint32, status network.UserStatus) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupStatusChange(w, peerID, status)
	}
}

// DispatchGroupSelfJoin fans out the local self-join confirmation to the
// matching group window.
func (d *Dispatcher) DispatchGroupSelfJoin(groupNumber uint32) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupSelfJoin(w)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupRejected fans out a join-rejected event to the matching
// group window.
func (d *Dispatcher) DispatchGroupRejected(groupNumber uint32, reason string) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupRejected(w, reason)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupModeration fans out a moderation event to the matching
// group window.
func (d *Dispatcher) DispatchGroupModeration(groupNumber, sourceID, targetID uint32, role network.GroupRole) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupModeration(w, sourceID, targetID, role)
		d.Registry.SetRefresh()
	}
}

// DispatchGroupVoiceState fans out a voice-state change to the matching
// group window.
func (d *Dispatcher) DispatchGroupVoiceState(groupNumber uint32, everyone bool) {
	if w := d.Registry.ByNum(KindGroup, groupNumber); w != nil && w.Sink != nil {
		w.Sink.OnGroupVoiceState(w, everyone)
		d.Registry.SetRefresh()
	}
}

// DispatchCallState fans out a call-state change to the friend's chat
// window, which owns the is_call flag (spec §3).
func (d *Dispatcher) DispatchCallState(friendNumber uint32, state network.CallState, reason string) {
	w := d.Registry.ByNum(KindFriendChat, friendNumber)
	if w == nil || w.Sink == nil {
		return
	}
	w.Sink.OnCallState(w, state, reason)
	w.IsCall = state != network.CallEnd && state != network.CallReject && state != network.CallCancel
	d.Registry.SetRefresh()
}

// DispatchSelfConnectionStatus fans out the self DHT connection status to
// the prompt window, which shows it, and to every friend-list window.
func (d *Dispatcher) DispatchSelfConnectionStatus(status network.ConnStatus) {
	for _, w := range d.Registry.ByKind(KindPrompt) {
		if w.Sink != nil {
			w.Sink.OnConnectionChange(w, status)
		}
	}
	for _, w := range d.Registry.ByKind(KindFriendList) {
		if w.Sink != nil {
			w.Sink.OnConnectionChange(w, status)
		}
	}
	d.Registry.SetRefresh()
}
