package signaling

import (
	"log/slog"
	"sync"
)

type identityKey struct {
	roomID        string
	participantID string
}

// Registry tracks every live peer and indexes the Joined ones by
// (room, participant id) for point-to-point routing. It owns its peers; the
// room directory holds only non-owning membership references.
type Registry struct {
	log *slog.Logger

	mu         sync.Mutex
	peers      map[*Peer]struct{}
	byIdentity map[identityKey]map[*Peer]struct{}
	byPeer     map[*Peer]identityKey
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		log:        logger,
		peers:      make(map[*Peer]struct{}),
		byIdentity: make(map[identityKey]map[*Peer]struct{}),
		byPeer:     make(map[*Peer]identityKey),
	}
}

// Register tracks a freshly accepted peer with null identity.
func (r *Registry) Register(p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p] = struct{}{}
}

// Bind assigns identity to a registered peer, exactly once. A second bind is
// a no-op with a warning; callers must not bind twice.
//
// Identity uniqueness within a room is caller-assigned, not re-validated: when
// two peers race to bind the same id both stay tracked, and Find returns an
// unspecified one of them.
func (r *Registry) Bind(p *Peer, roomID, participantID, name string, camera, mic bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !p.bindIdentity(roomID, participantID, name, camera, mic) {
		r.log.Warn("ignoring second identity bind",
			"room_id", roomID,
			"participant_id", participantID,
		)
		return false
	}

	key := identityKey{roomID: roomID, participantID: participantID}
	set, ok := r.byIdentity[key]
	if !ok {
		set = make(map[*Peer]struct{})
		r.byIdentity[key] = set
	}
	set[p] = struct{}{}
	r.byPeer[p] = key
	return true
}

// UpdateMediaState overwrites the camera/mic flags. Ignored when the peer was
// never bound.
func (r *Registry) UpdateMediaState(p *Peer, camera, mic bool) bool {
	return p.setMediaState(camera, mic)
}

// Unregister removes every index entry for the peer. Idempotent.
func (r *Registry) Unregister(p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.peers, p)

	key, ok := r.byPeer[p]
	if !ok {
		return
	}
	delete(r.byPeer, p)

	if set, ok := r.byIdentity[key]; ok {
		delete(set, p)
		if len(set) == 0 {
			delete(r.byIdentity, key)
		}
	}
}

// Find returns a peer in the room bound to the participant id, or nil. Used
// only for point-to-point routing.
func (r *Registry) Find(roomID, participantID string) *Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p := range r.byIdentity[identityKey{roomID: roomID, participantID: participantID}] {
		return p
	}
	return nil
}
