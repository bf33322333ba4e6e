// Package network defines the seam between the window/conversation engine
// and the Tox network layer. Per spec §1 the network layer itself
// (cryptographic transport, DHT, onion routing) is explicitly out of
// scope: the core consumes it only as an opaque handle exposing a fixed
// set of operations and emitting named callbacks. Core is that handle.
package network

import "time"

// PublicKey is a 32-byte Tox public key.
type PublicKey [32]byte

// FileID is a stable 32-byte identifier for a file transfer that survives
// disconnects. Filenumber (below) is only valid for one session.
type FileID [32]byte

// ConnStatus describes a friend's or our own transport connection state.
type ConnStatus int

const (
	ConnNone ConnStatus = iota
	ConnTCP
	ConnUDP
)

// UserStatus mirrors the Tox presence enum.
type UserStatus int

const (
	StatusNone UserStatus = iota
	StatusAway
	StatusBusy
)

// MessageType distinguishes a normal chat line from a CTCP-style action
// (the "/me" message kind).
type MessageType int

const (
	MessageNormal MessageType = iota
	MessageAction
)

// FileControl mirrors the network layer's file-control verbs.
type FileControl int

const (
	FileControlResume FileControl = iota
	FileControlPause
	FileControlCancel
)

// FileKind distinguishes ordinary file transfers from avatar broadcasts.
type FileKind int

const (
	FileKindData FileKind = iota
	FileKindAvatar
)

// TransferDirection is the direction of a file transfer slot.
type TransferDirection int

const (
	TransferSend TransferDirection = iota
	TransferRecv
)

// GroupRole mirrors the decentralized-group peer role enum; higher value
// sorts higher (see groupRoleWeight in internal/registry/group.go).
type GroupRole int

const (
	RoleObserver GroupRole = iota
	RoleUser
	RoleModerator
	RoleFounder
)

// ConferenceKind distinguishes text-only from audio-enabled conferences.
type ConferenceKind int

const (
	ConferenceText ConferenceKind = iota
	ConferenceAudio
)

// CallState mirrors the eight call-lifecycle events named in spec §4.1/§6.
type CallState int

const (
	CallInvite CallState = iota
	CallRinging
	CallStarting
	CallStart
	CallError
	CallCancel
	CallReject
	CallEnd
)

// FriendInfo is a read-only snapshot of a friend handed to callbacks; the
// mutable friend record itself lives in internal/registry.
type FriendInfo struct {
	Number     uint32
	PublicKey  PublicKey
	Name       string
	StatusMsg  string
	Conn       ConnStatus
	Status     UserStatus
	LastOnline time.Time
}

// ReceiptID identifies an outbound message for read-receipt correlation.
type ReceiptID uint32
