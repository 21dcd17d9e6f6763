package langreg

import "testing"

func TestResolveKnownLocale(t *testing.T) {
	e := Resolve("es-US")
	if e.ASRCode != "es-US" || e.MTCode != "es" {
		t.Fatalf("unexpected entry for es-US: %+v", e)
	}
	if e.Voice == nil || e.Voice.Name != "Lupe" {
		t.Fatalf("expected Lupe voice for es-US, got %+v", e.Voice)
	}
}

func TestResolveUnknownLocaleFallsBackToPivot(t *testing.T) {
	e := Resolve("xx-ZZ")
	if e.ASRCode != PivotCode || e.MTCode != PivotCode {
		t.Fatalf("expected pivot fallback, got %+v", e)
	}
}

func TestVoiceForTextOnlyLocale(t *testing.T) {
	if v := VoiceFor("zh-CN"); v != nil {
		t.Fatalf("expected no voice for zh-CN, got %+v", v)
	}
}

func TestMTFromASRRoundTrip(t *testing.T) {
	for locale, e := range table {
		if got := MTFromASR(e.ASRCode); got != e.MTCode {
			t.Errorf("MTFromASR(%s)=%s for locale %s, want %s", e.ASRCode, got, locale, e.MTCode)
		}
	}
}

func TestMTFromASRUnknownFallsBackToPivot(t *testing.T) {
	if got := MTFromASR("zz-ZZ"); got != PivotCode {
		t.Fatalf("expected pivot fallback, got %s", got)
	}
}
