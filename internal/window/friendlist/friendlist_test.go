package friendlist

import (
	"path/filepath"
	"testing"
	"time"

	"toxterm/internal/filexfer"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func newSink(t *testing.T) (*Sink, *network.Simnet, *registry.FriendRegistry) {
	t.Helper()
	sim := network.NewSimnet(network.PublicKey{})
	friends := registry.NewFriendRegistry()
	bl, err := registry.LoadBlockList(filepath.Join(t.TempDir(), "blocklist"))
	if err != nil {
		t.Fatalf("LoadBlockList: %v", err)
	}
	xfer := filexfer.New(sim, fixedNow)
	hist := scrollback.New(100)
	return New(sim, friends, bl, xfer, hist, fixedNow), sim, friends
}

func TestBlockMovesFriendToBlockList(t *testing.T) {
	s, _, friends := newSink(t)
	var pk network.PublicKey
	pk[0] = 42
	friends.Add(&registry.Friend{PubKey: pk, Name: "alice"})

	if err := s.Block(); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if friends.NumActive() != 0 {
		t.Fatalf("expected friend removed, numActive=%d", friends.NumActive())
	}
	entries := s.Blocked.Entries()
	if len(entries) != 1 || entries[0].Name != "alice" {
		t.Fatalf("expected alice in block list, got %+v", entries)
	}
}

func TestUnblockReAddsViaNoRequest(t *testing.T) {
	s, _, friends := newSink(t)
	var pk network.PublicKey
	pk[0] = 7
	friends.Add(&registry.Friend{PubKey: pk, Name: "bob"})
	if err := s.Block(); err != nil {
		t.Fatalf("Block: %v", err)
	}

	if err := s.Unblock(0); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	if friends.NumActive() != 1 {
		t.Fatalf("expected friend re-added, numActive=%d", friends.NumActive())
	}
	if len(s.Blocked.Entries()) != 0 {
		t.Fatalf("expected block list emptied")
	}
}

func TestToggleModeResetsHighlight(t *testing.T) {
	s, _, _ := newSink(t)
	s.Highlight = 3
	s.ToggleMode()
	if s.Mode != ModeBlocked || s.Highlight != 0 {
		t.Fatalf("expected blocked mode with reset highlight, got mode=%v highlight=%d", s.Mode, s.Highlight)
	}
}
