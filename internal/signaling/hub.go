package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/videomeet/relay/internal/metrics"
)

// Hub is the signaling router. It interprets inbound messages, applies the
// per-peer state machine, mutates the registry and room directory, and fans
// the resulting events out through best-effort peer sends.
//
// All shared-state mutation funnels through the hub; delivery always happens
// after the registry/directory locks are released, so a stalled recipient
// cannot stall unrelated rooms.
type Hub struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	registry *Registry
	rooms    *Rooms
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		log:      logger,
		metrics:  m,
		registry: NewRegistry(logger),
		rooms:    NewRooms(),
	}
}

// Connect tracks a freshly accepted transport with null identity.
func (h *Hub) Connect(p *Peer) {
	h.registry.Register(p)
}

// Disconnect runs the implicit-leave path for a closed transport. Idempotent:
// a transport that already left produces no further events.
func (h *Hub) Disconnect(p *Peer) {
	h.departure(p)
}

// HandleMessage processes one inbound message. The websocket server calls it
// from the connection's single reader goroutine, so messages from one peer
// are handled strictly in arrival order.
func (h *Hub) HandleMessage(p *Peer, raw []byte) {
	msg, err := parseInbound(raw)
	if err != nil {
		h.log.Warn("dropping invalid signaling message", "err", err)
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonProtocolViolation).Inc()
		return
	}

	switch msg.Type {
	case kindJoinRoom:
		h.handleJoin(p, msg)
	case kindOffer, kindAnswer, kindICECandidate:
		h.forward(p, msg, raw)
	case kindMediaState:
		h.handleMediaState(p, msg)
	case kindSharedScreen:
		h.handleSharedScreen(p, msg)
	case kindLeaveRoom:
		h.departure(p)
	}
}

func (h *Hub) handleJoin(p *Peer, msg inboundMessage) {
	camera := boolValue(msg.CameraEnabled, true)
	mic := boolValue(msg.MicEnabled, true)

	if !h.registry.Bind(p, msg.MeetingID, msg.ParticipantID, msg.ParticipantName, camera, mic) {
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonProtocolViolation).Inc()
		return
	}

	// Snapshot of the other members, atomic with the add: the joiner must
	// not see itself, and existing members learn of the joiner no later
	// than the joiner learns of them.
	others := h.rooms.Join(msg.MeetingID, p)

	h.metrics.JoinsTotal.Inc()
	h.metrics.ActiveRooms.Set(float64(h.rooms.Count()))

	h.log.Info("participant joined",
		"meeting_id", msg.MeetingID,
		"participant_id", msg.ParticipantID,
		"members", len(others)+1,
	)

	h.broadcast(others, participantJoinedEvent{
		Type:        eventParticipantJoined,
		Participant: p.Info(),
	}, eventParticipantJoined)

	infos := make([]participantInfo, 0, len(others))
	for _, member := range others {
		infos = append(infos, member.Info())
	}
	p.Send(roomParticipantsEvent{
		Type:         eventRoomParticipants,
		Participants: infos,
	})
}

// forward relays an offer/answer/candidate to its target, adding fromId. A
// missing or vanished target is an expected condition: the message is dropped
// and the sender is told nothing.
func (h *Hub) forward(p *Peer, msg inboundMessage, raw []byte) {
	roomID, fromID, joined := p.Identity()
	if !joined {
		h.log.Warn("dropping signaling message from unjoined connection", "kind", msg.Type)
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonProtocolViolation).Inc()
		return
	}

	target := h.registry.Find(roomID, msg.TargetID)
	if target == nil {
		h.log.Debug("signaling target not found",
			"kind", msg.Type,
			"meeting_id", roomID,
			"target_id", msg.TargetID,
		)
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonTargetNotFound).Inc()
		return
	}

	out, err := withFromID(raw, fromID)
	if err != nil {
		h.log.Warn("dropping unforwardable signaling message", "kind", msg.Type, "err", err)
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonProtocolViolation).Inc()
		return
	}

	if !target.SendRaw(out) {
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonPeerGone).Inc()
		return
	}
	h.metrics.ForwardedTotal.WithLabelValues(msg.Type).Inc()
}

func (h *Hub) handleMediaState(p *Peer, msg inboundMessage) {
	roomID, participantID, joined := p.Identity()
	if !joined || !h.registry.UpdateMediaState(p, *msg.CameraEnabled, *msg.MicEnabled) {
		h.log.Warn("dropping media-state-change from unjoined connection")
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonProtocolViolation).Inc()
		return
	}

	h.broadcast(h.rooms.Members(roomID, p), mediaChangeEvent{
		Type:          eventParticipantMediaChange,
		ParticipantID: participantID,
		CameraEnabled: *msg.CameraEnabled,
		MicEnabled:    *msg.MicEnabled,
	}, eventParticipantMediaChange)
}

// handleSharedScreen broadcasts the toggle without touching camera/mic state;
// screen sharing and media state are independent channels.
func (h *Hub) handleSharedScreen(p *Peer, msg inboundMessage) {
	roomID, participantID, joined := p.Identity()
	if !joined {
		h.log.Warn("dropping shared-screen from unjoined connection")
		h.metrics.DroppedTotal.WithLabelValues(metrics.DropReasonProtocolViolation).Inc()
		return
	}

	h.broadcast(h.rooms.Members(roomID, p), screenShareEvent{
		Type:          eventSharedScreenToggle,
		ParticipantID: participantID,
		ScreenEnabled: *msg.ScreenEnabled,
	}, eventSharedScreenToggle)
}

// departure handles explicit leave-room and transport close alike: remove the
// peer from directory and registry, and broadcast participant-left exactly
// once if it had joined.
func (h *Hub) departure(p *Peer) {
	roomID, participantID, wasJoined, alreadyClosed := p.beginClose()
	if alreadyClosed {
		return
	}

	if !wasJoined {
		h.registry.Unregister(p)
		return
	}

	remaining, wasMember := h.rooms.Leave(roomID, p)
	h.registry.Unregister(p)
	h.metrics.ActiveRooms.Set(float64(h.rooms.Count()))

	h.log.Info("participant left",
		"meeting_id", roomID,
		"participant_id", participantID,
		"members", len(remaining),
	)

	if wasMember {
		h.broadcast(remaining, participantLeftEvent{
			Type:          eventParticipantLeft,
			ParticipantID: participantID,
		}, eventParticipantLeft)
	}
}

// EndMeeting broadcasts meeting-ended to the room and tears it down: all
// members are dropped from the directory and registry together, without
// individual participant-left events, and their transports are closed.
func (h *Hub) EndMeeting(meetingID string) {
	members := h.rooms.Drop(meetingID)
	if len(members) == 0 {
		return
	}
	h.metrics.ActiveRooms.Set(float64(h.rooms.Count()))

	h.broadcast(members, meetingEndedEvent{
		Type:      eventMeetingEnded,
		MeetingID: meetingID,
	}, eventMeetingEnded)

	for _, p := range members {
		p.beginClose()
		h.registry.Unregister(p)
		p.Close()
	}

	h.log.Info("meeting torn down", "meeting_id", meetingID, "members", len(members))
}

// broadcast delivers one serialized message to every peer in the snapshot.
// A failing recipient never aborts delivery to the rest.
func (h *Hub) broadcast(peers []*Peer, v any, event string) {
	if len(peers) == 0 {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("marshal broadcast event", "event", event, "err", err)
		return
	}

	for _, p := range peers {
		p.SendRaw(data)
	}
	h.metrics.BroadcastsTotal.WithLabelValues(event).Inc()
}
