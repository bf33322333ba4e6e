package group

import (
	"testing"
	"time"

	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestOnGroupMessageFiltersIgnoredPeer(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	groups := registry.NewGroupRegistry()
	g := groups.Add([32]byte{}, "devs")
	g.Peers[1] = &registry.GroupPeer{Active: true, PeerID: 1, Name: "gina", Role: network.RoleUser}
	g.SetIgnore(1, true)
	hist := scrollback.New(100)
	s := New(sim, g, hist, fixedNow)

	s.OnGroupMessage(nil, 1, network.MessageNormal, "hello")
	hist.Print()
	if hist.Count() != 0 {
		t.Fatalf("expected ignored peer's message suppressed, got %d lines", hist.Count())
	}
}

func TestOnGroupModerationRebuildsRoleOrder(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	groups := registry.NewGroupRegistry()
	g := groups.Add([32]byte{}, "devs")
	g.Peers[1] = &registry.GroupPeer{Active: true, PeerID: 1, Name: "amy", Role: network.RoleUser}
	g.Peers[2] = &registry.GroupPeer{Active: true, PeerID: 2, Name: "bo", Role: network.RoleUser}
	g.RebuildIndex()
	hist := scrollback.New(100)
	s := New(sim, g, hist, fixedNow)

	s.OnGroupModeration(nil, 0, 2, network.RoleModerator)

	idx := g.SortedIndex()
	if len(idx) != 2 || idx[0] != 2 {
		t.Fatalf("expected promoted peer first in sorted index, got %v", idx)
	}
}

func TestOnGroupPeerExitRemovesPeer(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	groups := registry.NewGroupRegistry()
	g := groups.Add([32]byte{}, "devs")
	g.Peers[5] = &registry.GroupPeer{Active: true, PeerID: 5, Name: "hank", Role: network.RoleUser}
	hist := scrollback.New(100)
	s := New(sim, g, hist, fixedNow)

	s.OnGroupPeerExit(nil, 5, "left")
	if _, ok := g.Peers[5]; ok {
		t.Fatalf("expected peer 5 removed")
	}
}
