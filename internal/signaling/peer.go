package signaling

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Time allowed to write one message to a client before the write is abandoned.
const writeWait = 10 * time.Second

type peerState int

const (
	stateUnbound peerState = iota
	stateJoined
	stateClosed
)

// Peer wraps one websocket connection and the identity bound to it.
//
// Identity fields are set exactly once, on the first join-room message.
// The state machine per peer is Unbound -> Joined -> Closed; Closed is
// terminal and reached from either state.
type Peer struct {
	conn *websocket.Conn
	log  *slog.Logger

	// mu guards the state machine and identity fields. It is never held
	// across a network write.
	mu            sync.Mutex
	state         peerState
	roomID        string
	participantID string
	name          string
	cameraEnabled bool
	micEnabled    bool

	// writeMu serializes writes to the websocket; gorilla allows at most
	// one concurrent writer. gone latches after the first write failure so
	// later sends short-circuit until the read loop observes the close.
	writeMu sync.Mutex
	gone    bool
}

func newPeer(conn *websocket.Conn, logger *slog.Logger) *Peer {
	return &Peer{
		conn: conn,
		log:  logger,
	}
}

// Send marshals v and delivers it best-effort. A false return means the
// recipient is gone, which callers treat as an expected condition.
func (p *Peer) Send(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Error("marshal outbound message", "err", err)
		return false
	}
	return p.SendRaw(data)
}

// SendRaw delivers a pre-serialized message best-effort. Write failures are
// swallowed: a recipient that vanished mid-delivery surfaces to the sender
// only as a stalled negotiation, never as a relay error.
func (p *Peer) SendRaw(data []byte) bool {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.gone {
		return false
	}

	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		p.gone = true
		p.log.Debug("peer send failed", "err", err)
		return false
	}
	return true
}

// Close closes the transport. The peer's read loop observes the close and
// runs the implicit-leave path; Close itself mutates no shared state.
func (p *Peer) Close() {
	_ = p.conn.Close()
}

// bindIdentity attempts the one-time Unbound -> Joined transition.
func (p *Peer) bindIdentity(roomID, participantID, name string, camera, mic bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateUnbound {
		return false
	}
	p.state = stateJoined
	p.roomID = roomID
	p.participantID = participantID
	p.name = name
	p.cameraEnabled = camera
	p.micEnabled = mic
	return true
}

func (p *Peer) setMediaState(camera, mic bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateJoined {
		return false
	}
	p.cameraEnabled = camera
	p.micEnabled = mic
	return true
}

// Identity returns the bound room and participant id; ok is false unless the
// peer is currently Joined.
func (p *Peer) Identity() (roomID, participantID string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roomID, p.participantID, p.state == stateJoined
}

func (p *Peer) Info() participantInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return participantInfo{
		ID:            p.participantID,
		Name:          p.name,
		CameraEnabled: p.cameraEnabled,
		MicEnabled:    p.micEnabled,
	}
}

// beginClose transitions to Closed. alreadyClosed reports whether a previous
// leave or disconnect got there first, which makes the departure path
// idempotent; wasJoined tells the caller whether a participant-left broadcast
// is owed.
func (p *Peer) beginClose() (roomID, participantID string, wasJoined, alreadyClosed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateClosed {
		return "", "", false, true
	}
	wasJoined = p.state == stateJoined
	p.state = stateClosed
	return p.roomID, p.participantID, wasJoined, false
}
