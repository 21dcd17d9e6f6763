package meetings

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a meeting ID has no matching record.
var ErrNotFound = errors.New("meeting not found")

// ErrMeetingFull is returned when AddAttendee is called on a meeting that
// already has the maximum number of attendees.
var ErrMeetingFull = errors.New("meeting already has two attendees")

// Store persists meetings and their attendees. DynamoStore and MemStore
// both implement it; the REST handler depends only on this interface.
type Store interface {
	CreateMeeting(ctx context.Context, attendeeName string) (Meeting, Attendee, error)
	AddAttendee(ctx context.Context, meetingID, attendeeName string) (Meeting, Attendee, error)
	Get(ctx context.Context, meetingID string) (Meeting, error)
}
