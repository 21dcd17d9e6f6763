package meetings

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a mutex-guarded in-memory Store, used when DYNAMODB_TABLE_NAME
// is unset. Meetings do not survive a process restart.
type MemStore struct {
	mu       sync.Mutex
	meetings map[string]Meeting
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{meetings: make(map[string]Meeting)}
}

func (m *MemStore) CreateMeeting(_ context.Context, attendeeName string) (Meeting, Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attendee := Attendee{ID: uuid.New().String(), Name: attendeeName, CreatedAt: time.Now()}
	meeting := Meeting{ID: uuid.New().String(), CreatedAt: time.Now(), Attendees: []Attendee{attendee}}
	m.meetings[meeting.ID] = meeting
	return meeting, attendee, nil
}

func (m *MemStore) AddAttendee(_ context.Context, meetingID, attendeeName string) (Meeting, Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok := m.meetings[meetingID]
	if !ok {
		return Meeting{}, Attendee{}, ErrNotFound
	}
	if len(meeting.Attendees) >= maxAttendees {
		return Meeting{}, Attendee{}, ErrMeetingFull
	}
	attendee := Attendee{ID: uuid.New().String(), Name: attendeeName, CreatedAt: time.Now()}
	meeting.Attendees = append(meeting.Attendees, attendee)
	m.meetings[meetingID] = meeting
	return meeting, attendee, nil
}

func (m *MemStore) Get(_ context.Context, meetingID string) (Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meeting, ok := m.meetings[meetingID]
	if !ok {
		return Meeting{}, ErrNotFound
	}
	return meeting, nil
}
