package meeting

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/videomeet/relay/internal/httpserver"
)

// RoomEnder is the relay-side teardown hook invoked when a meeting is ended
// over REST: broadcast meeting-ended to the room, then tear the room down.
type RoomEnder interface {
	EndMeeting(meetingID string)
}

type Handlers struct {
	log   *slog.Logger
	store *Store
	relay RoomEnder
}

func NewHandlers(store *Store, relay RoomEnder, logger *slog.Logger) *Handlers {
	return &Handlers{
		log:   logger,
		store: store,
		relay: relay,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/meetings", h.create)
	mux.HandleFunc("GET /api/meetings/{meetingId}", h.get)
	mux.HandleFunc("POST /api/meetings/{meetingId}/join", h.join)
	mux.HandleFunc("POST /api/meetings/{meetingId}/leave", h.leave)
	mux.HandleFunc("POST /api/meetings/{meetingId}/end", h.end)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MeetingID string `json:"meetingId"`
		HostID    string `json:"hostId"`
		HostName  string `json:"hostName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostName == "" {
		writeError(w, http.StatusBadRequest, "Invalid meeting room data")
		return
	}

	room := h.store.Create(req.MeetingID, req.HostID, req.HostName)
	h.log.Info("meeting created", "meeting_id", room.MeetingID, "host_name", room.HostName)
	httpserver.WriteJSON(w, http.StatusOK, room)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	room, ok := h.store.Get(r.PathValue("meetingId"))
	if !ok {
		writeError(w, http.StatusNotFound, "Meeting room not found")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, room)
}

func (h *Handlers) join(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")

	var p Participant
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.ID == "" || p.Name == "" {
		writeError(w, http.StatusBadRequest, "Failed to join meeting room")
		return
	}

	if !h.store.IsActive(meetingID) {
		writeError(w, http.StatusNotFound, "Meeting room not found or inactive")
		return
	}

	room, ok := h.store.AddParticipant(meetingID, p)
	if !ok {
		writeError(w, http.StatusNotFound, "Meeting room not found or inactive")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, room)
}

func (h *Handlers) leave(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")

	var req struct {
		ParticipantID string `json:"participantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to leave meeting room")
		return
	}

	room, ok := h.store.RemoveParticipant(meetingID, req.ParticipantID)
	if !ok {
		writeError(w, http.StatusNotFound, "Meeting room not found")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, room)
}

func (h *Handlers) end(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")

	if !h.store.End(meetingID) {
		writeError(w, http.StatusNotFound, "Meeting room not found")
		return
	}

	// Notify live members and tear the signaling room down.
	h.relay.EndMeeting(meetingID)

	h.log.Info("meeting ended", "meeting_id", meetingID)
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	httpserver.WriteJSON(w, status, map[string]any{"error": msg})
}
