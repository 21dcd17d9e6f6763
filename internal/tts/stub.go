package tts

import "context"

// Stub returns a deterministic fake audio blob (or nil, respecting the
// registry's "no voice" locales) without calling a live provider. Used when
// AWS credentials are not configured and in unit tests.
type Stub struct {
	// Calls counts Synthesize invocations, for tests asserting a
	// synthesis call did or didn't happen.
	Calls int
}

// NewStub creates a Stub synthesizer.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) Synthesize(_ context.Context, text, locale string) ([]byte, error) {
	s.Calls++
	if voiceFor(locale) == nil {
		return nil, nil
	}
	return []byte("audio:" + locale + ":" + text), nil
}
