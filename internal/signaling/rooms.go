package signaling

import "sync"

// Rooms is the room directory: room id -> set of member peers. A room with
// zero members is deleted immediately; a later join with the same id starts a
// fresh set.
//
// The mutators return membership snapshots taken in the same critical section
// as the mutation, which is what keeps join/leave broadcasts consistent with
// the state change that triggered them. No caller performs network I/O under
// the directory lock.
type Rooms struct {
	mu      sync.Mutex
	members map[string]map[*Peer]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[*Peer]struct{}),
	}
}

// Join adds the peer to the room, creating it if absent, and returns the
// other current members as of the add.
func (r *Rooms) Join(roomID string, p *Peer) (others []*Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[roomID]
	if !ok {
		set = make(map[*Peer]struct{})
		r.members[roomID] = set
	}

	others = make([]*Peer, 0, len(set))
	for member := range set {
		others = append(others, member)
	}
	set[p] = struct{}{}
	return others
}

// Leave removes the peer and returns the remaining members as of the removal.
// wasMember is false when the peer was not in the room (repeated leave).
func (r *Rooms) Leave(roomID string, p *Peer) (remaining []*Peer, wasMember bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[roomID]
	if !ok {
		return nil, false
	}
	if _, wasMember = set[p]; !wasMember {
		return nil, false
	}

	delete(set, p)
	if len(set) == 0 {
		delete(r.members, roomID)
		return nil, true
	}

	remaining = make([]*Peer, 0, len(set))
	for member := range set {
		remaining = append(remaining, member)
	}
	return remaining, true
}

// Members returns a snapshot of the room's current members, optionally
// excluding one peer. Every current member appears exactly once; order is
// unspecified.
func (r *Rooms) Members(roomID string, excluding *Peer) []*Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.members[roomID]
	out := make([]*Peer, 0, len(set))
	for member := range set {
		if member == excluding {
			continue
		}
		out = append(out, member)
	}
	return out
}

// Drop removes the whole room at once and returns its members. Used for
// meeting teardown, where members leave together without departure
// broadcasts.
func (r *Rooms) Drop(roomID string) []*Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.members[roomID]
	delete(r.members, roomID)

	out := make([]*Peer, 0, len(set))
	for member := range set {
		out = append(out, member)
	}
	return out
}

// Count returns the number of rooms with at least one member.
func (r *Rooms) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
