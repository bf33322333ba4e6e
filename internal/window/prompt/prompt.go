// Package prompt implements the home window: the landing screen that shows
// incoming friend requests and the user's own connection status, grounded
// on original_source/src/prompt.c.
package prompt

import (
	"time"

	"toxterm/internal/network"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
)

// maxPendingRequests bounds the fixed slot array prompt.c stores unanswered
// friend requests in; a full array rejects new requests rather than
// growing unbounded.
const maxPendingRequests = 32

// Request is one stored, unanswered friend request.
type Request struct {
	Key     network.PublicKey
	Message string
}

// Known supplies the prompt window with the set of already-known contact
// keys, so it can warn about a possible impersonation collision (spec
// §4.2: "if the first three bytes of the key collide with any existing
// contact's, warns of a possible impersonation").
type Known interface {
	KnownKeys() []network.PublicKey
}

// Sink is the prompt window's EventSink: it stores friend requests and
// reports the user's own connection status.
type Sink struct {
	window.NoopSink

	History *scrollback.History
	Known   Known
	Now     func() time.Time

	requests []Request
	selfConn network.ConnStatus
}

// New returns a prompt Sink backed by history, with hist sized per the
// caller's scrollback configuration.
func New(history *scrollback.History, known Known, now func() time.Time) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{History: history, Known: known, Now: now}
}

// HistoryHandle exposes the scrollback this window owns, for the command
// executor's uniform /clear handling.
func (s *Sink) HistoryHandle() *scrollback.History { return s.History }

// Requests returns the currently stored, unanswered friend requests.
func (s *Sink) Requests() []Request { return append([]Request{}, s.requests...) }

// Pop removes and returns the request at idx, for /accept and /decline.
func (s *Sink) Pop(idx int) (Request, bool) {
	if idx < 0 || idx >= len(s.requests) {
		return Request{}, false
	}
	r := s.requests[idx]
	s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
	return r, true
}

// OnFriendRequest stores the (key, message) pair in the fixed slot array,
// rejecting it when full, prints a hint line, and warns of a possible
// impersonation if the key's first three bytes collide with a known
// contact's.
func (s *Sink) OnFriendRequest(w *window.Window, pk network.PublicKey, message string) {
	if len(s.requests) >= maxPendingRequests {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "",
			"Friend request from %s dropped: too many pending requests", shortKey(pk))
		return
	}
	s.requests = append(s.requests, Request{Key: pk, Message: message})
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "",
		"Friend request from %s: %s (use /accept or /decline)", shortKey(pk), message)

	if s.Known != nil {
		for _, known := range s.Known.KnownKeys() {
			if known != pk && known[0] == pk[0] && known[1] == pk[1] && known[2] == pk[2] {
				s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{Bold: true}, "", "",
					"Warning: this key's first three bytes collide with a contact you already have; possible impersonation")
				break
			}
		}
	}
}

// OnConnectionChange updates the prompt's view of the user's own
// connection status (spec §4.2: "on own connection change: updates status
// bar"). It is reached from Dispatcher.DispatchSelfConnectionStatus, which
// fans the self status out by window kind rather than by Num.
func (s *Sink) OnConnectionChange(w *window.Window, status network.ConnStatus) {
	s.selfConn = status
	s.History.Add(s.Now(), scrollback.LineConnection, scrollback.Attr{}, "", "", "Connection status: %s", statusText(status))
}

// SelfStatus reports the last self connection status observed.
func (s *Sink) SelfStatus() network.ConnStatus { return s.selfConn }

func shortKey(pk network.PublicKey) string {
	return hexPrefix(pk[:], 6)
}

func hexPrefix(b []byte, n int) string {
	const hexdigits = "0123456789abcdef"
	if n > len(b) {
		n = len(b)
	}
	out := make([]byte, 0, n*2)
	for _, c := range b[:n] {
		out = append(out, hexdigits[c>>4], hexdigits[c&0xf])
	}
	return string(out)
}

func statusText(status network.ConnStatus) string {
	switch status {
	case network.ConnNone:
		return "offline"
	case network.ConnTCP:
		return "online (TCP)"
	case network.ConnUDP:
		return "online (UDP)"
	default:
		return "unknown"
	}
}
