package network

import "context"

// Core is the opaque network-layer handle. It is deliberately shaped like
// rustyguts-bken/client/interfaces.go's Transporter: operations that push
// state out, plus SetOnX callback setters that pull asynchronous events in.
// A concrete binding (e.g. cgo bindings to c-toxcore) implements Core; this
// module ships only the interface and an in-memory fake (simnet) for tests.
type Core interface {
	// Lifecycle.
	Bootstrap(ctx context.Context, nodes []string) error
	Iterate(ctx context.Context) error // blocks until ctx is done, invoking callbacks
	Kill()

	SelfPublicKey() PublicKey
	SelfAddress() [38]byte // public key + nospam + checksum, the shareable "Tox ID"
	SetNospam(nospam uint32)
	SetSelfName(name string) error
	SetSelfStatusMessage(msg string) error
	SetSelfStatus(status UserStatus)

	// Friends.
	FriendAdd(addr [38]byte, message string) (friendNumber uint32, err error)
	FriendAddNoRequest(pk PublicKey) (friendNumber uint32, err error)
	FriendDelete(friendNumber uint32) error
	FriendSendMessage(friendNumber uint32, kind MessageType, text string) (ReceiptID, error)
	FriendSendAction(friendNumber uint32, text string) (ReceiptID, error)

	// Conferences (legacy, non-persistent across reconnection).
	ConferenceNew(kind ConferenceKind) (conferenceNumber uint32, err error)
	ConferenceInvite(friendNumber, conferenceNumber uint32) error
	ConferenceJoin(friendNumber uint32, cookie []byte) (conferenceNumber uint32, err error)
	ConferenceSendMessage(conferenceNumber uint32, kind MessageType, text string) error
	ConferenceSetTitle(conferenceNumber uint32, title string) error
	ConferenceDelete(conferenceNumber uint32) error
	ConferencePeerCount(conferenceNumber uint32) (uint32, error)
	ConferencePeerPubKey(conferenceNumber, peerNumber uint32) (PublicKey, error)
	ConferencePeerName(conferenceNumber, peerNumber uint32) (string, error)

	// Decentralized groups.
	GroupNew(name string, public bool) (groupNumber uint32, err error)
	GroupJoin(chatID [32]byte, password string) (groupNumber uint32, err error)
	GroupSendMessage(groupNumber uint32, kind MessageType, text string) error
	GroupSendPrivateMessage(groupNumber uint32, peerID uint32, text string) error
	GroupSetTopic(groupNumber uint32, topic string) error
	GroupSetPassword(groupNumber uint32, password string) error
	GroupSetPrivacyState(groupNumber uint32, public bool) error
	GroupSetTopicLock(groupNumber uint32, locked bool) error
	GroupSetVoiceState(groupNumber uint32, everyone bool) error
	GroupModSet(groupNumber uint32, peerID uint32, role GroupRole) error
	GroupKick(groupNumber uint32, peerID uint32) error
	GroupSetPeerLimit(groupNumber uint32, limit uint32) error
	GroupLeave(groupNumber uint32, partMessage string) error
	GroupSelfSetIgnore(groupNumber uint32, peerID uint32, ignored bool) error

	// File transfers (data or avatar).
	FileSend(friendNumber uint32, kind FileKind, size uint64, fileID FileID, name string) (filenumber uint32, err error)
	FileControl(friendNumber, filenumber uint32, ctl FileControl) error
	FileSeek(friendNumber, filenumber uint32, position uint64) error
	FileSendChunk(friendNumber, filenumber uint32, position uint64, data []byte) error

	// Calls (optional A/V; spec §1 treats the engines behind this as
	// external collaborators — Core only carries signaling).
	CallInvite(friendNumber uint32, audioBitrate, videoBitrate uint32) error
	CallAnswer(friendNumber uint32, audioBitrate, videoBitrate uint32) error
	CallHangup(friendNumber uint32) error

	// --- Callback setters (self/friend) ---
	SetOnSelfConnectionStatus(fn func(ConnStatus))
	SetOnFriendConnectionStatus(fn func(friendNumber uint32, status ConnStatus))
	SetOnFriendMessage(fn func(friendNumber uint32, kind MessageType, text string))
	SetOnFriendName(fn func(friendNumber uint32, name string))
	SetOnFriendStatus(fn func(friendNumber uint32, status UserStatus))
	SetOnFriendStatusMessage(fn func(friendNumber uint32, msg string))
	SetOnFriendRequest(fn func(pk PublicKey, message string))
	SetOnFriendTyping(fn func(friendNumber uint32, typing bool))
	SetOnFriendReadReceipt(fn func(friendNumber uint32, receipt ReceiptID))
	SetOnLosslessPacket(fn func(friendNumber uint32, data []byte))

	// --- Callback setters (conference) ---
	SetOnConferenceMessage(fn func(conferenceNumber, peerNumber uint32, kind MessageType, text string))
	SetOnConferenceInvite(fn func(friendNumber, conferenceNumber uint32, kind ConferenceKind, cookie []byte))
	SetOnConferencePeerListChanged(fn func(conferenceNumber uint32))
	SetOnConferencePeerName(fn func(conferenceNumber, peerNumber uint32, name string))
	SetOnConferenceTitle(fn func(conferenceNumber, peerNumber uint32, title string))

	// --- Callback setters (group invite) ---
	// A group invite arrives over the friend connection carrying the chat
	// id and password needed to join, mirroring ConferenceInvite's cookie
	// but for decentralized groups (spec §3's "a group invite slot").
	SetOnGroupInvite(fn func(friendNumber uint32, chatID [32]byte, password string))

	// --- Callback setters (file) ---
	SetOnFileChunkRequest(fn func(friendNumber, filenumber uint32, position uint64, length int))
	SetOnFileRecvChunk(fn func(friendNumber, filenumber uint32, position uint64, data []byte))
	SetOnFileControl(fn func(friendNumber, filenumber uint32, ctl FileControl))
	SetOnFileRecv(fn func(friendNumber, filenumber uint32, kind FileKind, size uint64, fileID FileID, name string))

	// --- Callback setters (group) ---
	SetOnGroupMessage(fn func(groupNumber, peerID uint32, kind MessageType, text string))
	SetOnGroupPrivateMessage(fn func(groupNumber, peerID uint32, text string))
	SetOnGroupPeerJoin(fn func(groupNumber, peerID uint32))
	SetOnGroupPeerExit(fn func(groupNumber, peerID uint32, message string))
	SetOnGroupTopic(fn func(groupNumber, peerID uint32, topic string))
	SetOnGroupPeerLimit(fn func(groupNumber uint32, limit uint32))
	SetOnGroupPrivacyState(fn func(groupNumber uint32, public bool))
	SetOnGroupTopicLock(fn func(groupNumber uint32, locked bool))
	SetOnGroupPassword(fn func(groupNumber uint32, password string))
	SetOnGroupNickChange(fn func(groupNumber, peerID uint32, name string))
	SetOnGroupStatusChange(fn func(groupNumber, peerID uint32, status UserStatus))
	SetOnGroupSelfJoin(fn func(groupNumber uint32))
	SetOnGroupRejected(fn func(groupNumber uint32, reason string))
	SetOnGroupModeration(fn func(groupNumber, sourceID, targetID uint32, role GroupRole))
	SetOnGroupVoiceState(fn func(groupNumber uint32, everyone bool))

	// --- Callback setters (calls) ---
	SetOnCallState(fn func(friendNumber uint32, state CallState, reason string))
}
