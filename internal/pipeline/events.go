package pipeline

// ParticipantInfo identifies the speaker a Pipeline is running for and the
// locales it was joined with.
type ParticipantInfo struct {
	ConnID            string
	AttendeeID        string
	DisplayName       string
	SpokenLocale      string // canonical locale the speaker talks in, e.g. "es-US"
	DeclaredTargetLocale string // locale the speaker wants captions in when alone
}

// CaptionEvent is delivered to a partner connection for every final
// transcript and every partial that passes the partial throttle, carrying both the original and translated text so a
// client can render either.
type CaptionEvent struct {
	SpeakerAttendeeID string
	SpeakerName       string
	OriginalText      string
	TranslatedText    string
	IsFinal           bool
	SourceLang        string // MT code the speaker spoke in
	TargetLang        string // MT code the partner receives
	StartMs           int64
	EndMs             int64
}

// AudioEvent carries a synthesized audio blob for delivery to a partner.
type AudioEvent struct {
	SpeakerAttendeeID string
	AudioData         []byte
	TargetLang        string
	IsInterim         bool // true for the 5s stale-partial fallback, false for a committed final
}

// PartnerConn is the narrow sink a Pipeline delivers events to. It never
// imports the transport package; transport's client type satisfies this
// structurally.
type PartnerConn interface {
	SendCaption(CaptionEvent)
	SendAudio(AudioEvent)
	IsOpen() bool
	// Locale returns the partner's own spoken locale — the language the
	// partner listens in, and therefore the translation target for
	// whatever this connection's speaker says.
	Locale() string
}

// Registry resolves a connection's current partner. Partner presence is
// re-checked on every transcript, not cached, since it can change between
// utterances within the same meeting.
type Registry interface {
	Partner(meetingID, connID string) (PartnerConn, bool)
}
