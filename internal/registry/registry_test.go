package registry

import (
	"os"
	"testing"

	"toxterm/internal/network"
)

func TestFriendAddDeleteSlotReuse(t *testing.T) {
	r := NewFriendRegistry()
	a := r.Add(&Friend{Name: "alice", Number: 0})
	b := r.Add(&Friend{Name: "bob", Number: 1})
	if a != 0 || b != 1 {
		t.Fatalf("expected sequential slots 0,1, got %d,%d", a, b)
	}
	r.Delete(a)
	if r.MaxIdx() != 2 {
		t.Fatalf("maxIdx should stay 2 when deleting a non-tail slot, got %d", r.MaxIdx())
	}
	c := r.Add(&Friend{Name: "carol", Number: 0})
	if c != 0 {
		t.Fatalf("expected slot 0 reused, got %d", c)
	}
}

func TestFriendDeleteTailShrinksMaxIdx(t *testing.T) {
	r := NewFriendRegistry()
	r.Add(&Friend{Name: "alice", Number: 0})
	b := r.Add(&Friend{Name: "bob", Number: 1})
	r.Delete(b)
	if r.MaxIdx() != 1 {
		t.Fatalf("expected maxIdx shrunk to 1, got %d", r.MaxIdx())
	}
}

func TestFriendSortOrderConnectionThenName(t *testing.T) {
	r := NewFriendRegistry()
	r.Add(&Friend{Name: "zara", Number: 0, Conn: network.ConnUDP})
	r.Add(&Friend{Name: "alice", Number: 1, Conn: network.ConnNone})
	r.Add(&Friend{Name: "bob", Number: 2, Conn: network.ConnUDP})
	r.Rebuild()
	idx := r.SortedIndex()
	if len(idx) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(idx))
	}
	if r.Get(idx[0]).Name != "bob" || r.Get(idx[1]).Name != "zara" {
		t.Fatalf("expected connected entries first in name order, got %v", namesOf(r, idx))
	}
	if r.Get(idx[2]).Name != "alice" {
		t.Fatalf("expected disconnected entry last, got %v", namesOf(r, idx))
	}
}

func namesOf(r *FriendRegistry, idx []uint32) []string {
	var out []string
	for _, i := range idx {
		out = append(out, r.Get(i).Name)
	}
	return out
}

func TestGroupRoleSortWeight(t *testing.T) {
	g := &Group{Peers: map[uint32]*GroupPeer{
		1: {Active: true, PeerID: 1, Name: "founder", Role: network.RoleFounder},
		2: {Active: true, PeerID: 2, Name: "obs", Role: network.RoleObserver},
		3: {Active: true, PeerID: 3, Name: "mod", Role: network.RoleModerator},
		4: {Active: true, PeerID: 4, Name: "user", Role: network.RoleUser},
	}}
	g.RebuildIndex()
	idx := g.SortedIndex()
	want := []uint32{1, 3, 4, 2}
	for i, w := range want {
		if idx[i] != w {
			t.Fatalf("expected order %v, got %v", want, idx)
		}
	}
}

func TestBlockListRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/blocklist"
	bl, err := LoadBlockList(path)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	pk := network.PublicKey{1, 2, 3}
	if err := bl.Add(BlockEntry{Name: "alice", PubKey: pk}); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded, err := LoadBlockList(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	e, ok := reloaded.Find(pk)
	if !ok || e.Name != "alice" {
		t.Fatalf("expected entry to round-trip, got %+v ok=%v", e, ok)
	}

	if _, ok, err := reloaded.Remove(pk); err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected file removed after emptying block list")
	}
}
