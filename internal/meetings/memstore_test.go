package meetings

import (
	"context"
	"testing"
)

func TestMemStoreCreateAndAddAttendee(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	meeting, attendee, err := s.CreateMeeting(ctx, "Alice")
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	if attendee.Name != "Alice" || len(meeting.Attendees) != 1 {
		t.Fatalf("unexpected meeting after create: %+v", meeting)
	}

	meeting, _, err = s.AddAttendee(ctx, meeting.ID, "Bob")
	if err != nil {
		t.Fatalf("add attendee: %v", err)
	}
	if len(meeting.Attendees) != 2 {
		t.Fatalf("expected two attendees, got %d", len(meeting.Attendees))
	}

	if _, _, err := s.AddAttendee(ctx, meeting.ID, "Carol"); err != ErrMeetingFull {
		t.Fatalf("expected ErrMeetingFull for a third attendee, got %v", err)
	}
}

func TestMemStoreAddAttendeeOnUnknownMeeting(t *testing.T) {
	s := NewMemStore()
	if _, _, err := s.AddAttendee(context.Background(), "missing", "Alice"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreGet(t *testing.T) {
	s := NewMemStore()
	meeting, _, _ := s.CreateMeeting(context.Background(), "Alice")

	got, err := s.Get(context.Background(), meeting.ID)
	if err != nil || got.ID != meeting.ID {
		t.Fatalf("unexpected get result: %+v, err=%v", got, err)
	}

	if _, err := s.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
