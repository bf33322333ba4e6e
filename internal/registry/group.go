package registry

import (
	"sort"
	"strings"
	"time"

	"toxterm/internal/network"
)

// GroupPeer is one member of a decentralized group (spec §3).
type GroupPeer struct {
	Active      bool
	PubKey      network.PublicKey
	PeerID      uint32
	Name        string
	PrevName    string
	Status      network.UserStatus
	Role        network.GroupRole
	Ignored     bool
	LastActive  time.Time
}

// Group mirrors spec §3's "Group (decentralized)" data model.
type Group struct {
	Number       uint32
	ChatID       [32]byte
	Name         string
	Peers        map[uint32]*GroupPeer
	IgnoredKeys  map[network.PublicKey]bool
	SidePos      int
	TimeConnected time.Time
	index        []uint32
}

// GroupRegistry is the process-wide collection of live groups.
type GroupRegistry struct {
	byNumber map[uint32]*Group
}

// NewGroupRegistry returns an empty registry.
func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{byNumber: make(map[uint32]*Group)}
}

// Add registers a group under the number the network layer assigned it
// (GroupNew/GroupJoin's return value), so later moderation/message calls
// against that number land on the same group.
func (r *GroupRegistry) Add(number uint32, chatID [32]byte, name string) *Group {
	g := &Group{
		Number:      number,
		ChatID:      chatID,
		Name:        name,
		Peers:       make(map[uint32]*GroupPeer),
		IgnoredKeys: make(map[network.PublicKey]bool),
	}
	r.byNumber[g.Number] = g
	return g
}

// Get returns the group with number, or nil.
func (r *GroupRegistry) Get(number uint32) *Group { return r.byNumber[number] }

// Delete removes the group.
func (r *GroupRegistry) Delete(number uint32) { delete(r.byNumber, number) }

// groupRoleWeight implements spec §4.5's role sort weights: founder
// highest, moderator above user, observer below user (half weight).
func groupRoleWeight(role network.GroupRole) float64 {
	switch role {
	case network.RoleFounder:
		return 400
	case network.RoleModerator:
		return 200
	case network.RoleObserver:
		return 50
	default: // RoleUser
		return 100
	}
}

// RebuildIndex resorts the group's peer list by role weight (founder x4,
// moderator x2, observer /2, relative to plain user) then case-insensitive
// name, sweeping active peers fresh every call per spec §4.5's discipline.
func (g *Group) RebuildIndex() {
	ids := make([]uint32, 0, len(g.Peers))
	for id, p := range g.Peers {
		if p != nil && p.Active {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := g.Peers[ids[i]], g.Peers[ids[j]]
		wa, wb := groupRoleWeight(a.Role), groupRoleWeight(b.Role)
		if wa != wb {
			return wa > wb
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	g.index = ids
}

// SortedIndex returns the last-computed sorted peer id view.
func (g *Group) SortedIndex() []uint32 { return append([]uint32{}, g.index...) }

// NameList derives the completion candidate list from active peers.
func (g *Group) NameList() []string {
	var out []string
	for _, id := range g.index {
		out = append(out, g.Peers[id].Name)
	}
	return out
}

// SetIgnore applies the ignore flag both in-band (the caller issues the
// corresponding network call) and out-of-band by recording the key so
// future peer_join/peer-list refreshes continue to filter this peer by
// public key, per spec §4.5.
func (g *Group) SetIgnore(peerID uint32, ignored bool) {
	p, ok := g.Peers[peerID]
	if !ok {
		return
	}
	p.Ignored = ignored
	if ignored {
		g.IgnoredKeys[p.PubKey] = true
	} else {
		delete(g.IgnoredKeys, p.PubKey)
	}
}
