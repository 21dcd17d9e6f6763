package transport

import (
	"testing"

	"go.uber.org/zap"
)

func newTestClient(id, meetingID, locale string) *Client {
	c := &Client{id: id, meetingID: meetingID, spokenLocale: locale}
	c.open.Store(true)
	return c
}

func TestRegistryEnforcesTwoPartyCap(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	a := newTestClient("a", "meeting-1", "en-US")
	b := newTestClient("b", "meeting-1", "es-US")
	cc := newTestClient("c", "meeting-1", "fr-FR")

	if err := r.Add(a); err != nil {
		t.Fatalf("first join should succeed: %v", err)
	}
	if err := r.Add(b); err != nil {
		t.Fatalf("second join should succeed: %v", err)
	}
	if err := r.Add(cc); err != ErrMeetingFull {
		t.Fatalf("expected ErrMeetingFull for a third join, got %v", err)
	}
}

func TestRegistryPartnerLookup(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	a := newTestClient("a", "meeting-1", "en-US")
	b := newTestClient("b", "meeting-1", "es-US")
	_ = r.Add(a)

	if _, ok := r.Partner("meeting-1", "a"); ok {
		t.Fatal("expected no partner before the second connection joins")
	}

	_ = r.Add(b)
	partner, ok := r.Partner("meeting-1", "a")
	if !ok {
		t.Fatal("expected a's partner to be found")
	}
	if partner.Locale() != "es-US" {
		t.Fatalf("expected partner locale es-US, got %s", partner.Locale())
	}

	r.Remove(b)
	if _, ok := r.Partner("meeting-1", "a"); ok {
		t.Fatal("expected no partner after the second connection leaves")
	}
}
