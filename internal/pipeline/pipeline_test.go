package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aura-translate/backend/internal/asrsession"
	"github.com/aura-translate/backend/internal/translate"
	"github.com/aura-translate/backend/internal/tts"
)

type fakePartner struct {
	locale   string
	open     bool
	captions chan CaptionEvent
	audio    chan AudioEvent
}

func newFakePartner(locale string) *fakePartner {
	return &fakePartner{locale: locale, open: true, captions: make(chan CaptionEvent, 16), audio: make(chan AudioEvent, 16)}
}

func (p *fakePartner) SendCaption(e CaptionEvent) { p.captions <- e }
func (p *fakePartner) SendAudio(e AudioEvent)     { p.audio <- e }
func (p *fakePartner) IsOpen() bool               { return p.open }
func (p *fakePartner) Locale() string             { return p.locale }

type fakeRegistry struct {
	partner PartnerConn
	present bool
}

func (r *fakeRegistry) Partner(string, string) (PartnerConn, bool) { return r.partner, r.present }

type noopASRBackend struct{}

func (noopASRBackend) Open(context.Context, string, chan<- asrsession.Segment) (asrsession.Conn, error) {
	return nil, errors.New("not used in this test")
}

func newTestPipeline(t *testing.T, reg Registry, tc *translate.Stub, synth interface {
	Synthesize(context.Context, string, string) ([]byte, error)
}) *Pipeline {
	t.Helper()
	p := New("meeting-1", ParticipantInfo{
		ConnID:                "conn-a",
		AttendeeID:            "att-a",
		DisplayName:           "Alice",
		SpokenLocale:          "es-US",
		DeclaredTargetLocale:  "en-US",
	}, reg, translate.New(tc), synth, NewPool(2), noopASRBackend{}, zap.NewNop())
	t.Cleanup(p.Close)
	return p
}

func mustRecvCaption(t *testing.T, ch chan CaptionEvent) CaptionEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for caption event")
		return CaptionEvent{}
	}
}

func mustRecvAudio(t *testing.T, ch chan AudioEvent) AudioEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audio event")
		return AudioEvent{}
	}
}

func TestHandleSegmentSameLanguageIsPassthroughAndSkipsTranslateCall(t *testing.T) {
	partner := newFakePartner("es-US")
	reg := &fakeRegistry{partner: partner, present: true}
	tc := translate.NewStub()
	p := newTestPipeline(t, reg, tc, tts.NewStub())

	p.handleSegment(asrsession.Segment{Text: "hola", IsFinal: true, SourceLang: "es-US"})

	evt := mustRecvCaption(t, partner.captions)
	if evt.TranslatedText != "hola" || tc.Calls != 0 {
		t.Fatalf("expected passthrough with no translate calls, got %q calls=%d", evt.TranslatedText, tc.Calls)
	}
}

func TestHandleSegmentFinalReusesExactMatchingPartialTranslation(t *testing.T) {
	partner := newFakePartner("en-US")
	reg := &fakeRegistry{partner: partner, present: true}
	tc := translate.NewStub()
	p := newTestPipeline(t, reg, tc, tts.NewStub())

	p.handleSegment(asrsession.Segment{Text: "hola", IsFinal: false, SourceLang: "es-US"})
	mustRecvCaption(t, partner.captions)

	p.handleSegment(asrsession.Segment{Text: "hola", IsFinal: true, SourceLang: "es-US"})
	final := mustRecvCaption(t, partner.captions)

	if tc.Calls != 1 {
		t.Fatalf("expected exactly one translate call across partial+final, got %d", tc.Calls)
	}
	if final.TranslatedText != "[en] hola" || !final.IsFinal {
		t.Fatalf("unexpected final caption: %+v", final)
	}
}

func TestHandleSegmentNoPartnerStillResetsStateWithoutDelivery(t *testing.T) {
	reg := &fakeRegistry{present: false}
	tc := translate.NewStub()
	synth := tts.NewStub()
	p := newTestPipeline(t, reg, tc, synth)

	p.handleSegment(asrsession.Segment{Text: "this utterance has nobody to hear it", IsFinal: true, SourceLang: "es-US"})

	if p.state.gen != 1 {
		t.Fatalf("expected utterance reset to bump gen, got %d", p.state.gen)
	}
	if synth.Calls != 0 {
		t.Fatalf("expected no synthesis without a partner, got %d calls", synth.Calls)
	}
}

func TestHandleFinalWithoutPreSynthDispatchesFreshSynthesis(t *testing.T) {
	partner := newFakePartner("en-US")
	reg := &fakeRegistry{partner: partner, present: true}
	tc := translate.NewStub()
	synth := tts.NewStub()
	p := newTestPipeline(t, reg, tc, synth)

	// Short text stays under preSynthMinRunes so no speculative call fires.
	p.handleSegment(asrsession.Segment{Text: "hola", IsFinal: true, SourceLang: "es-US"})
	mustRecvCaption(t, partner.captions)

	audio := mustRecvAudio(t, partner.audio)
	if audio.IsInterim {
		t.Fatal("expected a committed final audio event, got an interim one")
	}
	if audio.AudioData == nil {
		t.Fatal("expected non-nil audio blob")
	}
}

func TestHandleFinalReusesReadyPreSynthSlotWithoutAnotherSynthesisCall(t *testing.T) {
	partner := newFakePartner("en-US")
	reg := &fakeRegistry{partner: partner, present: true}
	tc := translate.NewStub()
	synth := tts.NewStub()
	p := newTestPipeline(t, reg, tc, synth)

	long := "this partial is long enough to trigger pre synthesis"
	p.handleSegment(asrsession.Segment{Text: long, IsFinal: false, SourceLang: "es-US"})
	mustRecvCaption(t, partner.captions)

	// Wait for the pre-synthesis job dispatched off the partial to land.
	deadline := time.Now().Add(time.Second)
	for {
		p.send(noopCmd{})
		if p.state.preSynth != nil && p.state.preSynth.ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pre-synthesis slot never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}

	before := synth.Calls
	p.handleSegment(asrsession.Segment{Text: long, IsFinal: true, SourceLang: "es-US"})
	mustRecvCaption(t, partner.captions)
	audio := mustRecvAudio(t, partner.audio)

	if synth.Calls != before {
		t.Fatalf("expected cached pre-synthesis to avoid a second call, calls went from %d to %d", before, synth.Calls)
	}
	if audio.IsInterim {
		t.Fatal("expected the reused pre-synthesis result to be delivered as a final, not interim")
	}
}

func TestStaleTimerFiresAtMostOnceAndBlocksFurtherInterimAudio(t *testing.T) {
	partner := newFakePartner("en-US")
	reg := &fakeRegistry{partner: partner, present: true}
	tc := translate.NewStub()
	synth := tts.NewStub()
	p := newTestPipeline(t, reg, tc, synth)

	p.state.latest = &latestPartial{translatedText: "a partial nobody ever finalized"}
	gen := p.state.gen

	p.handleStaleTimerFired(gen)
	audio := mustRecvAudio(t, partner.audio)
	if !audio.IsInterim {
		t.Fatal("expected the stale-partial fallback to be marked interim")
	}

	// A second fire for the same utterance must be a no-op: interimFired is
	// now true and latest state is still set.
	synthCallsBefore := synth.Calls
	p.handleStaleTimerFired(gen)
	time.Sleep(20 * time.Millisecond)
	if synth.Calls != synthCallsBefore {
		t.Fatalf("expected no second synthesis after interim already fired, got %d -> %d", synthCallsBefore, synth.Calls)
	}
}

func TestTranslateFailureFallsBackToOriginalTextInCaption(t *testing.T) {
	partner := newFakePartner("hi-IN")
	reg := &fakeRegistry{partner: partner, present: true}
	p := newTestPipeline(t, reg, translate.NewStub(), tts.NewStub())
	p.translator = translate.New(&alwaysFailClient{})

	p.handleSegment(asrsession.Segment{Text: "hola", IsFinal: true, SourceLang: "es-US"})
	evt := mustRecvCaption(t, partner.captions)
	if evt.TranslatedText != "hola" {
		t.Fatalf("expected fallback to original text, got %q", evt.TranslatedText)
	}
}

type alwaysFailClient struct{}

func (alwaysFailClient) TranslateOne(context.Context, string, string, string) (string, error) {
	return "", errors.New("boom")
}

// noopCmd is a test-only command that the worker loop ignores; the polling
// loop enqueues one before each check of the pipeline state.
type noopCmd struct{}
