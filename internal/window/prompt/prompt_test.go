package prompt

import (
	"testing"
	"time"

	"toxterm/internal/network"
	"toxterm/internal/scrollback"
)

type fakeKnown struct{ keys []network.PublicKey }

func (f fakeKnown) KnownKeys() []network.PublicKey { return f.keys }

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestOnFriendRequestStoresAndWarnsOnCollision(t *testing.T) {
	hist := scrollback.New(100)
	var existing network.PublicKey
	existing[0], existing[1], existing[2] = 0xAA, 0xBB, 0xCC

	s := New(hist, fakeKnown{keys: []network.PublicKey{existing}}, fixedNow)

	var incoming network.PublicKey
	incoming[0], incoming[1], incoming[2] = 0xAA, 0xBB, 0xCC
	incoming[3] = 0x01

	s.OnFriendRequest(nil, incoming, "hello")

	if len(s.Requests()) != 1 {
		t.Fatalf("expected 1 stored request, got %d", len(s.Requests()))
	}
	hist.Print()
	hist.Print()
	if hist.Count() != 2 {
		t.Fatalf("expected a hint line and a collision warning, got %d lines", hist.Count())
	}
}

func TestOnFriendRequestRejectsWhenFull(t *testing.T) {
	hist := scrollback.New(1000)
	s := New(hist, nil, fixedNow)
	for i := 0; i < maxPendingRequests; i++ {
		var pk network.PublicKey
		pk[0] = byte(i)
		s.OnFriendRequest(nil, pk, "hi")
	}
	if len(s.Requests()) != maxPendingRequests {
		t.Fatalf("expected %d requests, got %d", maxPendingRequests, len(s.Requests()))
	}
	var overflow network.PublicKey
	overflow[0] = 0xFF
	s.OnFriendRequest(nil, overflow, "one too many")
	if len(s.Requests()) != maxPendingRequests {
		t.Fatalf("expected overflow request dropped, got %d", len(s.Requests()))
	}
}

func TestPopRemovesRequest(t *testing.T) {
	hist := scrollback.New(100)
	s := New(hist, nil, fixedNow)
	var pk network.PublicKey
	pk[0] = 1
	s.OnFriendRequest(nil, pk, "hi")

	r, ok := s.Pop(0)
	if !ok || r.Key != pk {
		t.Fatalf("expected popped request to match stored key")
	}
	if len(s.Requests()) != 0 {
		t.Fatalf("expected request list empty after pop")
	}
}
