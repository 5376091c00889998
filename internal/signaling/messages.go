package signaling

import (
	"encoding/json"
	"fmt"
)

// Inbound message kinds.
const (
	kindJoinRoom     = "join-room"
	kindOffer        = "webrtc-offer"
	kindAnswer       = "webrtc-answer"
	kindICECandidate = "webrtc-ice-candidate"
	kindMediaState   = "media-state-change"
	kindSharedScreen = "shared-screen"
	kindLeaveRoom    = "leave-room"
)

// Outbound event names.
const (
	eventParticipantJoined      = "participant-joined"
	eventRoomParticipants       = "room-participants"
	eventParticipantMediaChange = "participant-media-change"
	eventParticipantLeft        = "participant-left"
	eventMeetingEnded           = "meeting-ended"

	// Deployed web clients switch on this exact spelling.
	eventSharedScreenToggle = "shared-screen-toogle"
)

// inboundMessage carries the routing fields of a client message. Offer,
// answer and candidate payloads are never modeled here: the relay forwards
// the raw JSON object untouched, apart from injecting fromId.
type inboundMessage struct {
	Type string `json:"type"`

	// join-room
	MeetingID       string `json:"meetingId"`
	ParticipantID   string `json:"participantId"`
	ParticipantName string `json:"participantName"`

	// join-room and media-state-change
	CameraEnabled *bool `json:"cameraEnabled"`
	MicEnabled    *bool `json:"micEnabled"`

	// shared-screen
	ScreenEnabled *bool `json:"screenEnabled"`

	// webrtc-offer, webrtc-answer, webrtc-ice-candidate
	TargetID string `json:"targetId"`
}

func parseInbound(data []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return inboundMessage{}, err
	}
	if err := msg.validate(); err != nil {
		return inboundMessage{}, err
	}
	return msg, nil
}

func (m inboundMessage) validate() error {
	switch m.Type {
	case kindJoinRoom:
		if m.MeetingID == "" {
			return fmt.Errorf("join-room message missing meetingId")
		}
		if m.ParticipantID == "" {
			return fmt.Errorf("join-room message missing participantId")
		}
	case kindOffer, kindAnswer, kindICECandidate:
		if m.TargetID == "" {
			return fmt.Errorf("%s message missing targetId", m.Type)
		}
	case kindMediaState:
		if m.CameraEnabled == nil || m.MicEnabled == nil {
			return fmt.Errorf("media-state-change message missing cameraEnabled/micEnabled")
		}
	case kindSharedScreen:
		if m.ScreenEnabled == nil {
			return fmt.Errorf("shared-screen message missing screenEnabled")
		}
	case kindLeaveRoom:
		// No required fields; the sender's own identity drives the leave.
	default:
		return fmt.Errorf("unsupported message type %q", m.Type)
	}
	return nil
}

type participantInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CameraEnabled bool   `json:"cameraEnabled"`
	MicEnabled    bool   `json:"micEnabled"`
}

type participantJoinedEvent struct {
	Type        string          `json:"type"`
	Participant participantInfo `json:"participant"`
}

type roomParticipantsEvent struct {
	Type         string            `json:"type"`
	Participants []participantInfo `json:"participants"`
}

type mediaChangeEvent struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	CameraEnabled bool   `json:"cameraEnabled"`
	MicEnabled    bool   `json:"micEnabled"`
}

type screenShareEvent struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	ScreenEnabled bool   `json:"screenEnabled"`
}

type participantLeftEvent struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
}

type meetingEndedEvent struct {
	Type      string `json:"type"`
	MeetingID string `json:"meetingId"`
}

// withFromID returns the original message object with a fromId member set to
// the sender's participant id. All other members keep their original bytes,
// so opaque SDP/candidate payloads pass through the relay unmodified.
func withFromID(raw []byte, fromID string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	id, err := json.Marshal(fromID)
	if err != nil {
		return nil, err
	}
	fields["fromId"] = id

	return json.Marshal(fields)
}

func boolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
