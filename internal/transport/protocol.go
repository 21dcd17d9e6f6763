package transport

// clientFrame is the JSON shape of every client -> server control frame,
// discriminated by action. Binary frames never use this type — they are
// raw PCM16LE audio handled directly in the read pump.
type clientFrame struct {
	Action         string `json:"action"`
	MeetingID      string `json:"meetingId"`
	AttendeeID     string `json:"attendeeId"`
	AttendeeName   string `json:"attendeeName"`
	SpokenLanguage string `json:"spokenLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// serverFrame is the JSON shape of every server -> client event frame,
// discriminated by type. All fields beyond type are optional; only the
// ones relevant to a given type are populated.
type serverFrame struct {
	Type string `json:"type"`

	SpeakerAttendeeID string `json:"speakerAttendeeId,omitempty"`
	SpeakerName       string `json:"speakerName,omitempty"`
	OriginalText      string `json:"originalText,omitempty"`
	TranslatedText    string `json:"translatedText,omitempty"`
	IsFinal           bool   `json:"isFinal,omitempty"`
	DetectedLanguage  string `json:"detectedLanguage,omitempty"`
	TargetLanguage    string `json:"targetLanguage,omitempty"`
	StartTimeMs       int64  `json:"startTimeMs,omitempty"`
	EndTimeMs         int64  `json:"endTimeMs,omitempty"`

	AudioData string `json:"audioData,omitempty"`

	Message string `json:"message,omitempty"`

	ConnectionID string `json:"connectionId,omitempty"`
}
