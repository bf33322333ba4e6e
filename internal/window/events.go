package window

import "toxterm/internal/network"

// EventSink is the capability interface spec §9 calls for: one method per
// network callback event named in spec §4.1/§6. A concrete window kind
// embeds NoopSink and overrides only the methods it cares about, so a
// window kind opts into a subset of events without any of them needing a
// type switch over window kind. Nothing here filters by a window's Num
// field: each Dispatcher method picks its target window(s) with
// Registry.ByNum or Registry.ByKind before calling a method.
type EventSink interface {
	Init(w *Window)
	Close(w *Window)

	OnMessage(w *Window, kind network.MessageType, text string)
	OnConnectionChange(w *Window, status network.ConnStatus)
	OnTypingChange(w *Window, typing bool)
	OnNickChange(w *Window, name string)
	OnStatusChange(w *Window, status network.UserStatus)
	OnStatusMessageChange(w *Window, msg string)
	OnFriendRequest(w *Window, pk network.PublicKey, message string)
	OnFriendAdded(w *Window, friendNumber uint32)

	OnConferenceMessage(w *Window, peerNumber uint32, kind network.MessageType, text string)
	OnConferenceInvite(w *Window, friendNumber uint32, kind network.ConferenceKind, cookie []byte)
	OnConferenceNameListChange(w *Window)
	OnConferencePeerName(w *Window, peerNumber uint32, name string)
	OnConferenceTitle(w *Window, peerNumber uint32, title string)

	OnGroupMessage(w *Window, peerID uint32, kind network.MessageType, text string)
	OnGroupPrivateMessage(w *Window, peerID uint32, text string)
	OnGroupPeerJoin(w *Window, peerID uint32)
	OnGroupPeerExit(w *Window, peerID uint32, message string)
	OnGroupTopic(w *Window, peerID uint32, topic string)
	OnGroupPeerLimit(w *Window, limit uint32)
	OnGroupPrivacyState(w *Window, public bool)
	OnGroupTopicLock(w *Window, locked bool)
	OnGroupPassword(w *Window, password string)
	OnGroupNickChange(w *Window, peerID uint32, name string)
	OnGroupStatusChange(w *Window, peerID uint32, status network.UserStatus)
	OnGroupSelfJoin(w *Window)
	OnGroupRejected(w *Window, reason string)
	OnGroupModeration(w *Window, sourceID, targetID uint32, role network.GroupRole)
	OnGroupVoiceState(w *Window, everyone bool)
	OnGroupInvite(w *Window, chatID [32]byte, password string)

	OnFileChunkRequest(w *Window, filenumber uint32, position uint64, length int)
	OnFileRecvChunk(w *Window, filenumber uint32, position uint64, data []byte)
	OnFileControl(w *Window, filenumber uint32, ctl network.FileControl)
	OnFileRecv(w *Window, filenumber uint32, kind network.FileKind, size uint64, fileID network.FileID, name string)

	OnReadReceipt(w *Window, receipt network.ReceiptID)

	OnCallState(w *Window, state network.CallState, reason string)
}

// NoopSink implements every EventSink method as a no-op; concrete window
// kinds embed it and override only the handlers their type opts into,
// matching spec §9's "blanket-default no-ops" design note.
type NoopSink struct{}

func (NoopSink) Init(*Window)  {}
func (NoopSink) Close(*Window) {}

func (NoopSink) OnMessage(*Window, network.MessageType, string)   {}
func (NoopSink) OnConnectionChange(*Window, network.ConnStatus)   {}
func (NoopSink) OnTypingChange(*Window, bool)                     {}
func (NoopSink) OnNickChange(*Window, string)                     {}
func (NoopSink) OnStatusChange(*Window, network.UserStatus)       {}
func (NoopSink) OnStatusMessageChange(*Window, string)            {}
func (NoopSink) OnFriendRequest(*Window, network.PublicKey, string) {}
func (NoopSink) OnFriendAdded(*Window, uint32)                    {}

func (NoopSink) OnConferenceMessage(*Window, uint32, network.MessageType, string) {}
func (NoopSink) OnConferenceInvite(*Window, uint32, network.ConferenceKind, []byte) {}
func (NoopSink) OnConferenceNameListChange(*Window)                {}
func (NoopSink) OnConferencePeerName(*Window, uint32, string)      {}
func (NoopSink) OnConferenceTitle(*Window, uint32, string)         {}

func (NoopSink) OnGroupMessage(*Window, uint32, network.MessageType, string) {}
func (NoopSink) OnGroupPrivateMessage(*Window, uint32, string)     {}
func (NoopSink) OnGroupPeerJoin(*Window, uint32)                   {}
func (NoopSink) OnGroupPeerExit(*Window, uint32, string)           {}
func (NoopSink) OnGroupTopic(*Window, uint32, string)              {}
func (NoopSink) OnGroupPeerLimit(*Window, uint32)                  {}
func (NoopSink) OnGroupPrivacyState(*Window, bool)                 {}
func (NoopSink) OnGroupTopicLock(*Window, bool)                    {}
func (NoopSink) OnGroupPassword(*Window, string)                   {}
func (NoopSink) OnGroupNickChange(*Window, uint32, string)         {}
func (NoopSink) OnGroupStatusChange(*Window, uint32, network.UserStatus) {}
func (NoopSink) OnGroupSelfJoin(*Window)                           {}
func (NoopSink) OnGroupRejected(*Window, string)                   {}
func (NoopSink) OnGroupModeration(*Window, uint32, uint32, network.GroupRole) {}
func (NoopSink) OnGroupVoiceState(*Window, bool)                   {}
func (NoopSink) OnGroupInvite(*Window, [32]byte, string)           {}

func (NoopSink) OnFileChunkRequest(*Window, uint32, uint64, int)   {}
func (NoopSink) OnFileRecvChunk(*Window, uint32, uint64, []byte)   {}
func (NoopSink) OnFileControl(*Window, uint32, network.FileControl) {}
func (NoopSink) OnFileRecv(*Window, uint32, network.FileKind, uint64, network.FileID, string) {}

func (NoopSink) OnReadReceipt(*Window, network.ReceiptID) {}

func (NoopSink) OnCallState(*Window, network.CallState, string) {}

var _ EventSink = NoopSink{}
