// Package transport holds the Connection Registry that enforces the
// two-party-per-meeting cap and looks up partners, and the Client
// Protocol Adapter that decodes client frames and serializes server
// events over a WebSocket: a Hub/Client split generalized from a
// many-member broadcast room to a strict two-party pairing, with
// cross-instance replication stripped since it is out of scope here.
package transport

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/aura-translate/backend/internal/pipeline"
)

// ErrMeetingFull is returned by Add when a meeting already has two
// connections.
var ErrMeetingFull = errors.New("meeting already has two connections")

// Registry tracks the at-most-two connections per meeting. All mutating
// operations are atomic; Partner returns a stable snapshot at call time.
type Registry struct {
	mu       sync.RWMutex
	meetings map[string]map[string]*Client
	logger   *zap.Logger
}

// NewRegistry creates an empty Connection Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{meetings: make(map[string]map[string]*Client), logger: logger}
}

// Add registers c under its meeting, enforcing the two-party cap. Returns
// ErrMeetingFull if the meeting already has two connections.
func (r *Registry) Add(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.meetings[c.meetingID]
	if members == nil {
		members = make(map[string]*Client)
		r.meetings[c.meetingID] = members
	}
	if len(members) >= 2 {
		return ErrMeetingFull
	}
	members[c.id] = c
	r.logger.Debug("connection joined meeting", zap.String("meeting_id", c.meetingID), zap.String("conn_id", c.id))
	return nil
}

// Remove drops c from its meeting, deleting the meeting entry once empty.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.meetings[c.meetingID]
	if members == nil {
		return
	}
	delete(members, c.id)
	if len(members) == 0 {
		delete(r.meetings, c.meetingID)
	}
	r.logger.Debug("connection left meeting", zap.String("meeting_id", c.meetingID), zap.String("conn_id", c.id))
}

// Partner returns the other connection in meetingID besides connID, if one
// is currently present. It satisfies pipeline.Registry.
func (r *Registry) Partner(meetingID, connID string) (pipeline.PartnerConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.meetings[meetingID]
	for id, c := range members {
		if id != connID {
			return c, true
		}
	}
	return nil, false
}
