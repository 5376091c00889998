package meeting

import (
	"testing"
)

func TestCreateFillsGeneratedIDs(t *testing.T) {
	s := NewStore()

	room := s.Create("", "", "Alice")
	if room.MeetingID == "" {
		t.Fatalf("expected generated meeting id")
	}
	if room.HostID == "" {
		t.Fatalf("expected generated host id")
	}
	if !room.IsActive {
		t.Fatalf("new room should be active")
	}
	if room.ID != 1 {
		t.Fatalf("ID=%d, want 1", room.ID)
	}
	if room.Participants == nil || len(room.Participants) != 0 {
		t.Fatalf("Participants=%v, want empty non-nil slice", room.Participants)
	}

	second := s.Create("", "", "Bob")
	if second.ID != 2 {
		t.Fatalf("second ID=%d, want 2", second.ID)
	}
}

func TestCreateReplacesExistingRecord(t *testing.T) {
	s := NewStore()

	s.Create("m1", "h1", "Alice")
	s.Create("m1", "h2", "Bob")

	room, ok := s.Get("m1")
	if !ok {
		t.Fatalf("room not found")
	}
	if room.HostID != "h2" || room.HostName != "Bob" {
		t.Fatalf("got host %s/%s, want h2/Bob", room.HostID, room.HostName)
	}
}

func TestGetMissing(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get("nope"); ok {
		t.Fatalf("expected ok=false for unknown meeting")
	}
}

func TestAddAndRemoveParticipant(t *testing.T) {
	s := NewStore()
	s.Create("m1", "h1", "Alice")

	room, ok := s.AddParticipant("m1", Participant{ID: "p1", Name: "Bob"})
	if !ok {
		t.Fatalf("AddParticipant failed")
	}
	if len(room.Participants) != 1 || room.Participants[0].ID != "p1" {
		t.Fatalf("Participants=%v", room.Participants)
	}

	room, ok = s.RemoveParticipant("m1", "p1")
	if !ok {
		t.Fatalf("RemoveParticipant failed")
	}
	if len(room.Participants) != 0 {
		t.Fatalf("Participants=%v, want empty", room.Participants)
	}

	// Removing an unknown participant is a no-op on an existing room.
	if _, ok := s.RemoveParticipant("m1", "ghost"); !ok {
		t.Fatalf("expected ok=true for existing room")
	}
	if _, ok := s.RemoveParticipant("missing", "p1"); ok {
		t.Fatalf("expected ok=false for unknown room")
	}
}

func TestEndKeepsRecordButDeactivates(t *testing.T) {
	s := NewStore()
	s.Create("m1", "h1", "Alice")

	if !s.IsActive("m1") {
		t.Fatalf("expected m1 active")
	}
	if !s.End("m1") {
		t.Fatalf("End failed")
	}
	if s.IsActive("m1") {
		t.Fatalf("expected m1 inactive after End")
	}

	room, ok := s.Get("m1")
	if !ok {
		t.Fatalf("ended room should remain resolvable")
	}
	if room.IsActive {
		t.Fatalf("IsActive=true, want false")
	}

	if s.End("missing") {
		t.Fatalf("expected End=false for unknown meeting")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := NewStore()
	s.Create("m1", "h1", "Alice")
	room, _ := s.AddParticipant("m1", Participant{ID: "p1", Name: "Bob"})

	room.Participants[0].Name = "mutated"

	fresh, _ := s.Get("m1")
	if fresh.Participants[0].Name != "Bob" {
		t.Fatalf("store state mutated through returned snapshot")
	}
}
