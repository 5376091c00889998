// Package meeting holds the meeting-room record store and its REST surface.
//
// Records here are scheduling metadata (who created the meeting, whether it
// is still active, the roster reported over REST). Live signaling membership
// lives in internal/signaling; the relay consumes this package only through
// its IsActive gate and the end-meeting trigger.
package meeting

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CameraEnabled bool   `json:"cameraEnabled"`
	MicEnabled    bool   `json:"micEnabled"`
	JoinedAt      string `json:"joinedAt"`
}

type Room struct {
	ID           int           `json:"id"`
	MeetingID    string        `json:"meetingId"`
	HostID       string        `json:"hostId"`
	HostName     string        `json:"hostName"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    time.Time     `json:"createdAt"`
	Participants []Participant `json:"participants"`
}

// Store is the in-memory meeting-room record store. All state is scoped to
// process lifetime.
type Store struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	nextID int
}

func NewStore() *Store {
	return &Store{
		rooms:  make(map[string]*Room),
		nextID: 1,
	}
}

// Create registers a meeting room. Empty meetingID or hostID are filled with
// generated UUIDs. Creating with an existing meetingID replaces the record.
func (s *Store) Create(meetingID, hostID, hostName string) Room {
	if meetingID == "" {
		meetingID = uuid.NewString()
	}
	if hostID == "" {
		hostID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room := &Room{
		ID:           s.nextID,
		MeetingID:    meetingID,
		HostID:       hostID,
		HostName:     hostName,
		IsActive:     true,
		CreatedAt:    time.Now(),
		Participants: []Participant{},
	}
	s.nextID++
	s.rooms[meetingID] = room
	return cloneRoom(room)
}

func (s *Store) Get(meetingID string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[meetingID]
	if !ok {
		return Room{}, false
	}
	return cloneRoom(room), true
}

// IsActive reports whether the meeting exists and has not been ended. This is
// the gate the REST join endpoint applies before clients attach to the relay.
func (s *Store) IsActive(meetingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[meetingID]
	return ok && room.IsActive
}

func (s *Store) AddParticipant(meetingID string, p Participant) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[meetingID]
	if !ok {
		return Room{}, false
	}
	room.Participants = append(room.Participants, p)
	return cloneRoom(room), true
}

func (s *Store) RemoveParticipant(meetingID, participantID string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[meetingID]
	if !ok {
		return Room{}, false
	}

	kept := room.Participants[:0]
	for _, p := range room.Participants {
		if p.ID != participantID {
			kept = append(kept, p)
		}
	}
	room.Participants = kept
	return cloneRoom(room), true
}

// End marks the meeting inactive. The record is kept so late GETs can still
// resolve it; only the active flag gates joining.
func (s *Store) End(meetingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[meetingID]
	if !ok {
		return false
	}
	room.IsActive = false
	return true
}

func cloneRoom(room *Room) Room {
	out := *room
	out.Participants = append([]Participant(nil), room.Participants...)
	return out
}
