// Package langreg is the static locale lookup table shared by every other
// component: it is the only place that knows how a canonical locale maps to
// an ASR dialect code, an MT code, and an optional TTS voice/engine.
package langreg

// PivotCode is the canonical pivot language for two-hop translation.
const PivotCode = "en"

// Voice describes a TTS voice/engine pair for a locale.
type Voice struct {
	Name   string // provider voice ID, e.g. "Lupe" for Polly es-US
	Engine string // provider engine, e.g. "neural", "standard"
}

// Entry is one row of the registry.
type Entry struct {
	ASRCode  string // code passed to the streaming recognizer, e.g. "es-US"
	MTCode   string // code passed to the translator, e.g. "es"
	Voice    *Voice // nil means text-only target (no TTS voice available)
}

// table is keyed by canonical locale (e.g. "en-US", "es-US", "hi-IN").
// Unknown locales fall back to the pivot entry via Resolve.
var table = map[string]Entry{
	"en-US": {ASRCode: "en-US", MTCode: "en", Voice: &Voice{Name: "Joanna", Engine: "neural"}},
	"en-GB": {ASRCode: "en-GB", MTCode: "en", Voice: &Voice{Name: "Amy", Engine: "neural"}},
	"es-US": {ASRCode: "es-US", MTCode: "es", Voice: &Voice{Name: "Lupe", Engine: "neural"}},
	"es-ES": {ASRCode: "es-ES", MTCode: "es", Voice: &Voice{Name: "Lucia", Engine: "neural"}},
	"fr-FR": {ASRCode: "fr-FR", MTCode: "fr", Voice: &Voice{Name: "Lea", Engine: "neural"}},
	"de-DE": {ASRCode: "de-DE", MTCode: "de", Voice: &Voice{Name: "Vicki", Engine: "neural"}},
	"pt-BR": {ASRCode: "pt-BR", MTCode: "pt", Voice: &Voice{Name: "Camila", Engine: "neural"}},
	"hi-IN": {ASRCode: "hi-IN", MTCode: "hi", Voice: &Voice{Name: "Kajal", Engine: "neural"}},
	"ja-JP": {ASRCode: "ja-JP", MTCode: "ja", Voice: &Voice{Name: "Takumi", Engine: "neural"}},
	"zh-CN": {ASRCode: "zh-CN", MTCode: "zh", Voice: nil}, // text-only: no Polly voice provisioned
	"ar-AE": {ASRCode: "ar-AE", MTCode: "ar", Voice: nil},
}

// asrToMT maps an ASR-emitted dialect code back to its MT code, for the case
// where the recognizer reports a dialect the registry also knows as a
// locale key (asr codes and locale keys coincide in this table, but the
// lookup is kept independent so the two concerns don't silently couple).
var asrToMT = buildASRIndex()

func buildASRIndex() map[string]string {
	idx := make(map[string]string, len(table))
	for _, e := range table {
		idx[e.ASRCode] = e.MTCode
	}
	return idx
}

// Resolve looks up the registry entry for a canonical locale. Unknown
// locales resolve to the pivot entry (ASR and MT code en, with the en-US
// voice).
func Resolve(locale string) Entry {
	if e, ok := table[locale]; ok {
		return e
	}
	return Entry{ASRCode: PivotCode, MTCode: PivotCode, Voice: table["en-US"].Voice}
}

// ASR returns the ASR dialect code for a locale.
func ASR(locale string) string {
	return Resolve(locale).ASRCode
}

// MT returns the MT code for a locale.
func MT(locale string) string {
	return Resolve(locale).MTCode
}

// MTFromASR maps an ASR-emitted dialect code to its MT code. Unknown ASR
// codes fall back to the pivot code.
func MTFromASR(asrCode string) string {
	if mt, ok := asrToMT[asrCode]; ok {
		return mt
	}
	return PivotCode
}

// VoiceFor returns the TTS voice/engine for a locale, or nil if the locale
// has no provisioned voice (text-only target).
func VoiceFor(locale string) *Voice {
	return Resolve(locale).Voice
}
