package network

import (
	"context"
	"fmt"
	"sync"
)

// Simnet is an in-memory fake Core used by package tests across the module.
// It never talks to a real network; operations record what was asked and
// callers can later inject callback events with the Inject* helpers. This
// mirrors the teacher's own hand-rolled test doubles (testuser.go,
// app_test.go's mock Transporter) rather than pulling in a mocking library.
type Simnet struct {
	mu sync.Mutex

	selfPK      PublicKey
	nospam      uint32
	nextFriend  uint32
	nextConf    uint32
	nextGroup   uint32
	nextFile    uint32
	nextReceipt uint32

	sentMessages []SentMessage
	fileSends    []FileSendCall

	conferencePeers map[uint32][]conferencePeer

	onSelfConnectionStatus     func(ConnStatus)
	onFriendConnectionStatus   func(uint32, ConnStatus)
	onFriendMessage            func(uint32, MessageType, string)
	onFriendName               func(uint32, string)
	onFriendStatus             func(uint32, UserStatus)
	onFriendStatusMessage      func(uint32, string)
	onFriendRequest            func(PublicKey, string)
	onFriendTyping             func(uint32, bool)
	onFriendReadReceipt        func(uint32, ReceiptID)
	onLosslessPacket           func(uint32, []byte)
	onConferenceMessage        func(uint32, uint32, MessageType, string)
	onConferenceInvite         func(uint32, uint32, ConferenceKind, []byte)
	onConferencePeerListChange func(uint32)
	onConferencePeerName       func(uint32, uint32, string)
	onConferenceTitle          func(uint32, uint32, string)
	onFileChunkRequest         func(uint32, uint32, uint64, int)
	onFileRecvChunk            func(uint32, uint32, uint64, []byte)
	onFileControl              func(uint32, uint32, FileControl)
	onFileRecv                 func(uint32, uint32, FileKind, uint64, FileID, string)
	onGroupMessage             func(uint32, uint32, MessageType, string)
	onGroupPrivateMessage      func(uint32, uint32, string)
	onGroupPeerJoin            func(uint32, uint32)
	onGroupPeerExit            func(uint32, uint32, string)
	onGroupTopic               func(uint32, uint32, string)
	onGroupPeerLimit           func(uint32, uint32)
	onGroupPrivacyState        func(uint32, bool)
	onGroupTopicLock           func(uint32, bool)
	onGroupPassword            func(uint32, string)
	onGroupNickChange          func(uint32, uint32, string)
	onGroupStatusChange        func(uint32, uint32, UserStatus)
	onGroupSelfJoin            func(uint32)
	onGroupRejected            func(uint32, string)
	onGroupModeration          func(uint32, uint32, uint32, GroupRole)
	onGroupVoiceState          func(uint32, bool)
	onCallState                func(uint32, CallState, string)
	onGroupInvite              func(uint32, [32]byte, string)
}

// SentMessage records one FriendSendMessage/FriendSendAction call.
type SentMessage struct {
	FriendNumber uint32
	Kind         MessageType
	Text         string
	Receipt      ReceiptID
}

// FileSendCall records one FileSend call.
type FileSendCall struct {
	FriendNumber uint32
	Kind         FileKind
	Size         uint64
	FileID       FileID
	Name         string
	Filenumber   uint32
}

// conferencePeer is one entry of a simulated conference's peer table,
// queried back through ConferencePeerCount/ConferencePeerPubKey/Name.
type conferencePeer struct {
	PubKey PublicKey
	Name   string
}

// NewSimnet creates a ready-to-use fake Core.
func NewSimnet(selfPK PublicKey) *Simnet {
	return &Simnet{selfPK: selfPK, conferencePeers: make(map[uint32][]conferencePeer)}
}

var _ Core = (*Simnet)(nil)

func (s *Simnet) Bootstrap(ctx context.Context, nodes []string) error { return nil }
func (s *Simnet) Iterate(ctx context.Context) error                  { <-ctx.Done(); return ctx.Err() }
func (s *Simnet) Kill()                                               {}

func (s *Simnet) SelfPublicKey() PublicKey { return s.selfPK }
func (s *Simnet) SelfAddress() [38]byte {
	var addr [38]byte
	copy(addr[:32], s.selfPK[:])
	return addr
}
func (s *Simnet) SetNospam(n uint32)                       { s.mu.Lock(); s.nospam = n; s.mu.Unlock() }
func (s *Simnet) SetSelfName(name string) error            { return nil }
func (s *Simnet) SetSelfStatusMessage(msg string) error    { return nil }
func (s *Simnet) SetSelfStatus(status UserStatus)          {}

func (s *Simnet) FriendAdd(addr [38]byte, message string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextFriend
	s.nextFriend++
	return n, nil
}

func (s *Simnet) FriendAddNoRequest(pk PublicKey) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextFriend
	s.nextFriend++
	return n, nil
}

func (s *Simnet) FriendDelete(friendNumber uint32) error { return nil }

func (s *Simnet) FriendSendMessage(friendNumber uint32, kind MessageType, text string) (ReceiptID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReceipt++
	r := ReceiptID(s.nextReceipt)
	s.sentMessages = append(s.sentMessages, SentMessage{friendNumber, kind, text, r})
	return r, nil
}

func (s *Simnet) FriendSendAction(friendNumber uint32, text string) (ReceiptID, error) {
	return s.FriendSendMessage(friendNumber, MessageAction, text)
}

func (s *Simnet) ConferenceNew(kind ConferenceKind) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextConf
	s.nextConf++
	return n, nil
}
func (s *Simnet) ConferenceInvite(friendNumber, conferenceNumber uint32) error { return nil }
func (s *Simnet) ConferenceJoin(friendNumber uint32, cookie []byte) (uint32, error) {
	return s.ConferenceNew(ConferenceText)
}
func (s *Simnet) ConferenceSendMessage(conferenceNumber uint32, kind MessageType, text string) error {
	return nil
}
func (s *Simnet) ConferenceSetTitle(conferenceNumber uint32, title string) error { return nil }
func (s *Simnet) ConferenceDelete(conferenceNumber uint32) error                 { return nil }

func (s *Simnet) ConferencePeerCount(conferenceNumber uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(len(s.conferencePeers[conferenceNumber])), nil
}

func (s *Simnet) ConferencePeerPubKey(conferenceNumber, peerNumber uint32) (PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers := s.conferencePeers[conferenceNumber]
	if int(peerNumber) >= len(peers) {
		return PublicKey{}, fmt.Errorf("network: conference %d has no peer %d", conferenceNumber, peerNumber)
	}
	return peers[peerNumber].PubKey, nil
}

func (s *Simnet) ConferencePeerName(conferenceNumber, peerNumber uint32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers := s.conferencePeers[conferenceNumber]
	if int(peerNumber) >= len(peers) {
		return "", fmt.Errorf("network: conference %d has no peer %d", conferenceNumber, peerNumber)
	}
	return peers[peerNumber].Name, nil
}

// InjectConferencePeerList sets the simulated peer table for a conference
// and fires the peer-list-changed callback, for tests that exercise
// conference window peer diffing.
func (s *Simnet) InjectConferencePeerList(conferenceNumber uint32, peers []struct {
	PubKey PublicKey
	Name   string
}) {
	s.mu.Lock()
	out := make([]conferencePeer, len(peers))
	for i, p := range peers {
		out[i] = conferencePeer{PubKey: p.PubKey, Name: p.Name}
	}
	s.conferencePeers[conferenceNumber] = out
	fn := s.onConferencePeerListChange
	s.mu.Unlock()
	if fn != nil {
		fn(conferenceNumber)
	}
}

func (s *Simnet) GroupNew(name string, public bool) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nextGroup
	s.nextGroup++
	return n, nil
}
func (s *Simnet) GroupJoin(chatID [32]byte, password string) (uint32, error) {
	return s.GroupNew("", true)
}
func (s *Simnet) GroupSendMessage(groupNumber uint32, kind MessageType, text string) error { return nil }
func (s *Simnet) GroupSendPrivateMessage(groupNumber uint32, peerID uint32, text string) error {
	return nil
}
func (s *Simnet) GroupSetTopic(groupNumber uint32, topic string) error           { return nil }
func (s *Simnet) GroupSetPassword(groupNumber uint32, password string) error     { return nil }
func (s *Simnet) GroupSetPrivacyState(groupNumber uint32, public bool) error     { return nil }
func (s *Simnet) GroupSetTopicLock(groupNumber uint32, locked bool) error        { return nil }
func (s *Simnet) GroupSetVoiceState(groupNumber uint32, everyone bool) error     { return nil }
func (s *Simnet) GroupModSet(groupNumber, peerID uint32, role GroupRole) error   { return nil }
func (s *Simnet) GroupKick(groupNumber, peerID uint32) error                    { return nil }
func (s *Simnet) GroupSetPeerLimit(groupNumber uint32, limit uint32) error       { return nil }
func (s *Simnet) GroupLeave(groupNumber uint32, partMessage string) error       { return nil }
func (s *Simnet) GroupSelfSetIgnore(groupNumber, peerID uint32, ignored bool) error {
	return nil
}

func (s *Simnet) FileSend(friendNumber uint32, kind FileKind, size uint64, fileID FileID, name string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn := s.nextFile
	s.nextFile++
	s.fileSends = append(s.fileSends, FileSendCall{friendNumber, kind, size, fileID, name, fn})
	return fn, nil
}
func (s *Simnet) FileControl(friendNumber, filenumber uint32, ctl FileControl) error { return nil }
func (s *Simnet) FileSeek(friendNumber, filenumber uint32, position uint64) error    { return nil }
func (s *Simnet) FileSendChunk(friendNumber, filenumber uint32, position uint64, data []byte) error {
	return nil
}

func (s *Simnet) CallInvite(friendNumber uint32, audioBitrate, videoBitrate uint32) error { return nil }
func (s *Simnet) CallAnswer(friendNumber uint32, audioBitrate, videoBitrate uint32) error { return nil }
func (s *Simnet) CallHangup(friendNumber uint32) error                                   { return nil }

func (s *Simnet) SetOnSelfConnectionStatus(fn func(ConnStatus))              { s.onSelfConnectionStatus = fn }
func (s *Simnet) SetOnFriendConnectionStatus(fn func(uint32, ConnStatus))    { s.onFriendConnectionStatus = fn }
func (s *Simnet) SetOnFriendMessage(fn func(uint32, MessageType, string))    { s.onFriendMessage = fn }
func (s *Simnet) SetOnFriendName(fn func(uint32, string))                    { s.onFriendName = fn }
func (s *Simnet) SetOnFriendStatus(fn func(uint32, UserStatus))              { s.onFriendStatus = fn }
func (s *Simnet) SetOnFriendStatusMessage(fn func(uint32, string))           { s.onFriendStatusMessage = fn }
func (s *Simnet) SetOnFriendRequest(fn func(PublicKey, string))              { s.onFriendRequest = fn }
func (s *Simnet) SetOnFriendTyping(fn func(uint32, bool))                    { s.onFriendTyping = fn }
func (s *Simnet) SetOnFriendReadReceipt(fn func(uint32, ReceiptID))          { s.onFriendReadReceipt = fn }
func (s *Simnet) SetOnLosslessPacket(fn func(uint32, []byte))                { s.onLosslessPacket = fn }

func (s *Simnet) SetOnConferenceMessage(fn func(uint32, uint32, MessageType, string)) {
	s.onConferenceMessage = fn
}
func (s *Simnet) SetOnConferenceInvite(fn func(uint32, uint32, ConferenceKind, []byte)) {
	s.onConferenceInvite = fn
}
func (s *Simnet) SetOnConferencePeerListChanged(fn func(uint32)) { s.onConferencePeerListChange = fn }
func (s *Simnet) SetOnConferencePeerName(fn func(uint32, uint32, string)) {
	s.onConferencePeerName = fn
}
func (s *Simnet) SetOnConferenceTitle(fn func(uint32, uint32, string)) { s.onConferenceTitle = fn }

func (s *Simnet) SetOnGroupInvite(fn func(uint32, [32]byte, string)) { s.onGroupInvite = fn }

func (s *Simnet) SetOnFileChunkRequest(fn func(uint32, uint32, uint64, int)) { s.onFileChunkRequest = fn }
func (s *Simnet) SetOnFileRecvChunk(fn func(uint32, uint32, uint64, []byte)) { s.onFileRecvChunk = fn }
func (s *Simnet) SetOnFileControl(fn func(uint32, uint32, FileControl))      { s.onFileControl = fn }
func (s *Simnet) SetOnFileRecv(fn func(uint32, uint32, FileKind, uint64, FileID, string)) {
	s.onFileRecv = fn
}

func (s *Simnet) SetOnGroupMessage(fn func(uint32, uint32, MessageType, string)) { s.onGroupMessage = fn }
func (s *Simnet) SetOnGroupPrivateMessage(fn func(uint32, uint32, string))       { s.onGroupPrivateMessage = fn }
func (s *Simnet) SetOnGroupPeerJoin(fn func(uint32, uint32))                     { s.onGroupPeerJoin = fn }
func (s *Simnet) SetOnGroupPeerExit(fn func(uint32, uint32, string))             { s.onGroupPeerExit = fn }
func (s *Simnet) SetOnGroupTopic(fn func(uint32, uint32, string))                { s.onGroupTopic = fn }
func (s *Simnet) SetOnGroupPeerLimit(fn func(uint32, uint32))                    { s.onGroupPeerLimit = fn }
func (s *Simnet) SetOnGroupPrivacyState(fn func(uint32, bool))                   { s.onGroupPrivacyState = fn }
func (s *Simnet) SetOnGroupTopicLock(fn func(uint32, bool))                      { s.onGroupTopicLock = fn }
func (s *Simnet) SetOnGroupPassword(fn func(uint32, string))                     { s.onGroupPassword = fn }
func (s *Simnet) SetOnGroupNickChange(fn func(uint32, uint32, string))           { s.onGroupNickChange = fn }
func (s *Simnet) SetOnGroupStatusChange(fn func(uint32, uint32, UserStatus))     { s.onGroupStatusChange = fn }
func (s *Simnet) SetOnGroupSelfJoin(fn func(uint32))                             { s.onGroupSelfJoin = fn }
func (s *Simnet) SetOnGroupRejected(fn func(uint32, string))                     { s.onGroupRejected = fn }
func (s *Simnet) SetOnGroupModeration(fn func(uint32, uint32, uint32, GroupRole)) {
	s.onGroupModeration = fn
}
func (s *Simnet) SetOnGroupVoiceState(fn func(uint32, bool)) { s.onGroupVoiceState = fn }

func (s *Simnet) SetOnCallState(fn func(uint32, CallState, string)) { s.onCallState = fn }

// --- Test injection helpers: simulate an incoming network event. ---

func (s *Simnet) InjectFriendMessage(friendNumber uint32, kind MessageType, text string) {
	if s.onFriendMessage != nil {
		s.onFriendMessage(friendNumber, kind, text)
	}
}

func (s *Simnet) InjectFriendConnectionStatus(friendNumber uint32, status ConnStatus) {
	if s.onFriendConnectionStatus != nil {
		s.onFriendConnectionStatus(friendNumber, status)
	}
}

func (s *Simnet) InjectFriendRequest(pk PublicKey, message string) {
	if s.onFriendRequest != nil {
		s.onFriendRequest(pk, message)
	}
}

func (s *Simnet) InjectFileChunkRequest(friendNumber, filenumber uint32, position uint64, length int) {
	if s.onFileChunkRequest != nil {
		s.onFileChunkRequest(friendNumber, filenumber, position, length)
	}
}

func (s *Simnet) InjectFileRecv(friendNumber, filenumber uint32, kind FileKind, size uint64, fileID FileID, name string) {
	if s.onFileRecv != nil {
		s.onFileRecv(friendNumber, filenumber, kind, size, fileID, name)
	}
}

func (s *Simnet) InjectFileRecvChunk(friendNumber, filenumber uint32, position uint64, data []byte) {
	if s.onFileRecvChunk != nil {
		s.onFileRecvChunk(friendNumber, filenumber, position, data)
	}
}

func (s *Simnet) InjectFileControl(friendNumber, filenumber uint32, ctl FileControl) {
	if s.onFileControl != nil {
		s.onFileControl(friendNumber, filenumber, ctl)
	}
}

func (s *Simnet) InjectReadReceipt(friendNumber uint32, receipt ReceiptID) {
	if s.onFriendReadReceipt != nil {
		s.onFriendReadReceipt(friendNumber, receipt)
	}
}

func (s *Simnet) InjectConferenceInvite(friendNumber, conferenceNumber uint32, kind ConferenceKind, cookie []byte) {
	if s.onConferenceInvite != nil {
		s.onConferenceInvite(friendNumber, conferenceNumber, kind, cookie)
	}
}

func (s *Simnet) InjectGroupInvite(friendNumber uint32, chatID [32]byte, password string) {
	if s.onGroupInvite != nil {
		s.onGroupInvite(friendNumber, chatID, password)
	}
}

// SentMessages returns a copy of every message sent so far, for assertions.
func (s *Simnet) SentMessages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMessage, len(s.sentMessages))
	copy(out, s.sentMessages)
	return out
}

// FileSends returns a copy of every FileSend call made so far.
func (s *Simnet) FileSends() []FileSendCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileSendCall, len(s.fileSends))
	copy(out, s.fileSends)
	return out
}

// String implements fmt.Stringer for debug printing in tests.
func (s *Simnet) String() string {
	return fmt.Sprintf("Simnet{pk=%x}", s.selfPK[:4])
}
