package translate

import "context"

// Stub is a deterministic Client used when no AWS credentials are
// configured, and in unit tests that need predictable translations
// without a live dependency.
type Stub struct {
	// Translations maps "srcMT>dstMT>text" to a canned result. Misses fall
	// through to a tagged passthrough so callers can still distinguish a
	// translated string from the untouched original.
	Translations map[string]string

	// Calls counts TranslateOne invocations, for tests asserting a
	// translate call did or didn't happen.
	Calls int
}

// NewStub creates an empty Stub translator.
func NewStub() *Stub {
	return &Stub{Translations: make(map[string]string)}
}

func (s *Stub) TranslateOne(_ context.Context, text, srcMT, dstMT string) (string, error) {
	s.Calls++
	key := srcMT + ">" + dstMT + ">" + text
	if out, ok := s.Translations[key]; ok {
		return out, nil
	}
	return "[" + dstMT + "] " + text, nil
}
