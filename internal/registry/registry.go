// Package registry implements the sparse-array + parallel sorted index
// discipline from spec §4.5, grounded on original_source/src/friendlist.c
// (index[] rebuild via stable sort with a weighted comparator) and
// groupchats.c (role sort weights).
package registry

import (
	"sort"
	"strings"
	"time"

	"toxterm/internal/network"
)

// Friend is one entry in the friend registry; it mirrors spec §3's "Friend
// entry" data model.
type Friend struct {
	Number   uint32
	Active   bool
	PubKey   network.PublicKey
	Name     string
	StatusMsg string
	Conn     network.ConnStatus
	Status   network.UserStatus
	Typing   bool
	LoggingOn bool
	AutoAcceptFiles bool
	LastOnline time.Time

	// Per-friend configuration, restored to configured defaults whenever
	// the chat window is reopened (spec §3 invariant).
	TabColor        int
	AutoAccept      bool
	AutoLog         bool
	ShowConnectMsg  bool
	Alias           string

	// Pending invites this friend has sent that haven't been joined yet
	// (spec §3's "a conference invite slot, a group invite slot"). Each is
	// nil until an invite arrives and is cleared once /cjoin or /gaccept
	// consumes it.
	PendingConferenceInvite *ConferenceInvite
	PendingGroupInvite      *GroupInvite
}

// ConferenceInvite is a conference invite received from a friend, held
// until the user runs /cjoin.
type ConferenceInvite struct {
	Kind   network.ConferenceKind
	Cookie []byte
}

// GroupInvite is a decentralized group invite received from a friend, held
// until the user runs /gaccept.
type GroupInvite struct {
	ChatID   [32]byte
	Password string
}

// FriendRegistry is the sparse-array + sorted-index friend store.
type FriendRegistry struct {
	slots     []*Friend // index by Number; nil when inactive
	maxIdx    int        // one past the highest live slot
	numActive int
	index     []uint32 // sorted view over active slot numbers
}

// NewFriendRegistry returns an empty registry.
func NewFriendRegistry() *FriendRegistry { return &FriendRegistry{} }

// Add inserts f at the slot matching f.Number, which the caller must set to
// the number the network layer assigned (FriendAdd/FriendAddNoRequest's
// return value) so later friend-keyed calls land on the same entry. It
// grows the slot array as needed and bumps maxIdx.
func (r *FriendRegistry) Add(f *Friend) uint32 {
	number := f.Number
	f.Active = true
	for int(number) >= len(r.slots) {
		r.slots = append(r.slots, nil)
	}
	r.slots[number] = f
	if int(number)+1 > r.maxIdx {
		r.maxIdx = int(number) + 1
	}
	r.numActive++
	r.Rebuild()
	return number
}

// Delete clears the slot and, if it was the tail, shrinks maxIdx by walking
// backward over now-inactive slots.
func (r *FriendRegistry) Delete(number uint32) bool {
	if int(number) >= len(r.slots) || r.slots[number] == nil {
		return false
	}
	r.slots[number] = nil
	r.numActive--
	if int(number)+1 == r.maxIdx {
		for r.maxIdx > 0 && r.slots[r.maxIdx-1] == nil {
			r.maxIdx--
		}
	}
	r.Rebuild()
	return true
}

// Get returns the friend at number, or nil if the slot is inactive.
func (r *FriendRegistry) Get(number uint32) *Friend {
	if int(number) >= len(r.slots) {
		return nil
	}
	return r.slots[number]
}

// MaxIdx returns one past the highest live slot.
func (r *FriendRegistry) MaxIdx() int { return r.maxIdx }

// NumActive returns the count of active entries.
func (r *FriendRegistry) NumActive() int { return r.numActive }

// Rebuild sweeps active entries and rebuilds the sorted index via a stable
// sort: connection status first (connected sorts above none), then
// case-insensitive name order. Called after every insert, delete,
// connection-status change, or name change, never maintained incrementally.
func (r *FriendRegistry) Rebuild() {
	r.index = r.index[:0]
	for _, f := range r.slots {
		if f != nil && f.Active {
			r.index = append(r.index, f.Number)
		}
	}
	sort.SliceStable(r.index, func(i, j int) bool {
		a, b := r.slots[r.index[i]], r.slots[r.index[j]]
		wa, wb := friendSortWeight(a), friendSortWeight(b)
		if wa != wb {
			return wa > wb
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

func friendSortWeight(f *Friend) int {
	if f.Conn != network.ConnNone {
		return 100000
	}
	return 0
}

// SortedIndex returns the current sorted view (connection status first,
// then case-insensitive name).
func (r *FriendRegistry) SortedIndex() []uint32 { return append([]uint32{}, r.index...) }

// Each iterates every active friend in slot order (not sorted order).
func (r *FriendRegistry) Each(fn func(*Friend)) {
	for _, f := range r.slots {
		if f != nil && f.Active {
			fn(f)
		}
	}
}
