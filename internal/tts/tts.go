// Package tts turns text + target locale into an opaque audio blob (or
// nil, when the registry has no voice for the locale).
package tts

import (
	"context"

	"github.com/aura-translate/backend/internal/langreg"
)

// Synthesizer converts translated text to speech for a locale.
type Synthesizer interface {
	// Synthesize returns an opaque audio blob, or nil if locale has no
	// provisioned voice. A non-nil error means the synthesis call itself
	// failed (network, provider quota); callers treat that the same as a
	// nil blob — caption delivery never depends on audio succeeding.
	Synthesize(ctx context.Context, text, locale string) ([]byte, error)
}

// voiceFor is checked by every backend first, so "no voice" short-circuits
// before any network call.
func voiceFor(locale string) *langreg.Voice {
	return langreg.VoiceFor(locale)
}
