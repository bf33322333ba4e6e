package registry

import (
	"sort"
	"strings"
	"time"

	"toxterm/internal/network"
)

// ConferencePeer is one member of a legacy conference (spec §3).
type ConferencePeer struct {
	Active        bool
	PubKey        network.PublicKey
	Number        uint32
	Name          string
	SendingAudio  bool
	OutputDevice  int
	LastAudio     time.Time
}

// Conference mirrors spec §3's "Conference" data model.
type Conference struct {
	Active      bool
	ID          uint32
	ConfID      [32]byte
	Kind        network.ConferenceKind
	Title       string
	StartTime   time.Time
	Peers       []*ConferencePeer // sparse, parallel to maxIdx/index discipline below
	maxIdx      int
	index       []uint32
	SidebarPos  int

	AudioEnabled     bool
	InputDevice      int
	LastSentAudio    time.Time
	PushToTalk       bool
	LastPushed       time.Time
}

// NameList derives the completion candidate list from currently active
// peers, spec §3's "derived name_list for completion".
func (c *Conference) NameList() []string {
	var out []string
	for _, p := range c.Peers {
		if p != nil && p.Active {
			out = append(out, p.Name)
		}
	}
	return out
}

// ConferenceRegistry is the process-wide collection of live conferences.
type ConferenceRegistry struct {
	byID map[uint32]*Conference
}

// NewConferenceRegistry returns an empty registry.
func NewConferenceRegistry() *ConferenceRegistry {
	return &ConferenceRegistry{byID: make(map[uint32]*Conference)}
}

// Add registers a conference under the number the network layer assigned
// it (ConferenceNew's return value), so later peer/title/message calls
// against that number land on the same conference.
func (r *ConferenceRegistry) Add(number uint32, kind network.ConferenceKind, confID [32]byte, start time.Time) *Conference {
	c := &Conference{Active: true, ID: number, ConfID: confID, Kind: kind, StartTime: start}
	r.byID[c.ID] = c
	return c
}

// Get returns the conference with id, or nil.
func (r *ConferenceRegistry) Get(id uint32) *Conference { return r.byID[id] }

// Delete removes the conference with id.
func (r *ConferenceRegistry) Delete(id uint32) { delete(r.byID, id) }

// UpdatePeerList implements spec §4.5's peer-list-changed handling:
// snapshot the old peer array, reallocate to newSize, and for each new
// index look up by public key in the old snapshot, carrying forward audio
// device index and other preserved fields. lookup resolves the public key
// and display name for peer index i in the new list. It returns the
// indices that are genuinely new (not found in the old snapshot), for the
// caller to decide whether to print a join line (gated by a debounce
// interval against c.StartTime, per spec §4.5).
func (c *Conference) UpdatePeerList(newSize int, lookup func(i int) (network.PublicKey, uint32, string)) []int {
	old := c.Peers
	byKey := make(map[network.PublicKey]*ConferencePeer, len(old))
	for _, p := range old {
		if p != nil && p.Active {
			byKey[p.PubKey] = p
		}
	}

	next := make([]*ConferencePeer, newSize)
	var fresh []int
	for i := 0; i < newSize; i++ {
		pk, num, name := lookup(i)
		if prev, ok := byKey[pk]; ok {
			prev.Number = num
			prev.Name = name
			next[i] = prev
			continue
		}
		next[i] = &ConferencePeer{Active: true, PubKey: pk, Number: num, Name: name}
		fresh = append(fresh, i)
	}
	c.Peers = next
	return fresh
}

// JoinDebounce is the interval after conference start during which
// newly-discovered peers are assumed to be part of the initial sync and
// should not produce a join line (spec §4.5).
const JoinDebounce = 3 * time.Second

// SortedConferenceNames returns conference ids sorted by case-insensitive
// title, used by the friend-list-style sidebar/tab ordering.
func (r *ConferenceRegistry) SortedConferenceNames() []uint32 {
	ids := make([]uint32, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return strings.ToLower(r.byID[ids[i]].Title) < strings.ToLower(r.byID[ids[j]].Title)
	})
	return ids
}
