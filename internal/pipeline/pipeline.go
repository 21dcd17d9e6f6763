// Package pipeline is the per-connection orchestrator that wires a
// speaker's raw audio through ASR, pivot translation, and speculative
// TTS into ordered events for that speaker's partner.
//
// A Pipeline owns exactly one serialized worker goroutine. Every mutation of
// its state happens on that goroutine, driven by a command channel; raw
// audio frames bypass the channel entirely and go straight to the current
// ASR session under a dedicated mutex, so a slow translate/TTS call never
// backs up audio ingestion.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aura-translate/backend/internal/asrsession"
	"github.com/aura-translate/backend/internal/langreg"
	"github.com/aura-translate/backend/internal/translate"
	"github.com/aura-translate/backend/internal/tts"
)

const (
	maxAudioFrameBytes = 1 << 16

	partialEmitThrottle = 100 * time.Millisecond
	preSynthThrottle    = 1 * time.Second
	preSynthMinRunes    = 10
	staleTimerDelay     = 5 * time.Second
	cmdQueueDepth       = 64
	finishTimeout       = 5 * time.Second
)

// Pipeline runs the translation pipeline for one connection within one
// meeting.
type Pipeline struct {
	meetingID string
	info      ParticipantInfo

	registry   Registry
	translator *translate.Translator
	synth      tts.Synthesizer
	pool       *Pool
	asrBackend asrsession.Backend
	logger     *zap.Logger

	asrMu   sync.Mutex
	asrSess *asrsession.Session

	cmds  chan any
	state *pipelineState

	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Pipeline for one joined connection and starts its worker
// goroutine. Callers must call Close when the connection disconnects.
func New(meetingID string, info ParticipantInfo, registry Registry, translator *translate.Translator, synth tts.Synthesizer, pool *Pool, asrBackend asrsession.Backend, logger *zap.Logger) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		meetingID:  meetingID,
		info:       info,
		registry:   registry,
		translator: translator,
		synth:      synth,
		pool:       pool,
		asrBackend: asrBackend,
		logger:     logger,
		cmds:       make(chan any, cmdQueueDepth),
		state:      newPipelineState(),
		ctx:        ctx,
		cancel:     cancel,
	}
	go p.run()
	return p
}

// OnJoin opens the initial ASR session for the speaker's spoken locale.
func (p *Pipeline) OnJoin() {
	p.openASRSession()
}

// OnAudioFrame forwards one raw PCM16LE mono frame to the current ASR
// session. This never touches the command channel: it is the one piece of
// pipeline state allowed to mutate outside the serialized worker, because
// audio ingestion must never block on a translate or TTS call.
func (p *Pipeline) OnAudioFrame(frame []byte) {
	if len(frame) == 0 || len(frame) > maxAudioFrameBytes {
		return
	}
	sess := p.currentASRSession()
	if sess == nil {
		return
	}
	sess.Push(frame)
}

// OnMicOff gracefully finishes the current ASR session so the provider
// flushes buffered audio and emits a terminal transcript, without affecting
// the pipeline's worker state.
func (p *Pipeline) OnMicOff() {
	sess := p.currentASRSession()
	if sess == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
		defer cancel()
		_ = sess.Finish(ctx)
	}()
}

// OnMicOn opens a fresh ASR session, replacing and stopping whatever
// session (if any) is currently active.
func (p *Pipeline) OnMicOn() {
	p.openASRSession()
}

// OnStop hard-stops the ASR session and returns pipeline state to IDLE,
// without closing the connection itself — the client may resume later.
func (p *Pipeline) OnStop() {
	p.asrMu.Lock()
	sess := p.asrSess
	p.asrSess = nil
	p.asrMu.Unlock()
	if sess != nil {
		sess.Stop()
	}
	p.send(clearStateCmd{})
}

// Close tears the pipeline down for good: the ASR session is stopped and
// the worker goroutine exits. Called when the connection itself closes.
func (p *Pipeline) Close() {
	p.asrMu.Lock()
	sess := p.asrSess
	p.asrSess = nil
	p.asrMu.Unlock()
	if sess != nil {
		sess.Stop()
	}
	p.cancel()
}

func (p *Pipeline) openASRSession() {
	p.asrMu.Lock()
	old := p.asrSess
	sess := asrsession.New(p.asrBackend, langreg.ASR(p.info.SpokenLocale), p.logger)
	p.asrSess = sess
	p.asrMu.Unlock()
	if old != nil {
		old.Stop()
	}
	go p.forwardSegments(sess)
}

func (p *Pipeline) currentASRSession() *asrsession.Session {
	p.asrMu.Lock()
	defer p.asrMu.Unlock()
	return p.asrSess
}

func (p *Pipeline) forwardSegments(sess *asrsession.Session) {
	for {
		select {
		case seg, ok := <-sess.Segments():
			if !ok {
				return
			}
			if !p.send(segmentCmd{seg: seg}) {
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// send enqueues cmd on the worker channel, honoring pipeline shutdown.
// Returns false if the pipeline is closed.
func (p *Pipeline) send(cmd any) bool {
	select {
	case p.cmds <- cmd:
		return true
	case <-p.ctx.Done():
		return false
	}
}

type segmentCmd struct{ seg asrsession.Segment }
type clearStateCmd struct{}
type staleTimerFiredCmd struct{ gen uint64 }
type preSynthDoneCmd struct {
	gen        uint64
	translated string
	audio      []byte
}
type finalAudioDoneCmd struct {
	partner    PartnerConn
	dstMT      string
	speakerID  string
	audio      []byte
}

func (p *Pipeline) run() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case cmd := <-p.cmds:
			switch c := cmd.(type) {
			case segmentCmd:
				p.handleSegment(c.seg)
			case clearStateCmd:
				p.state.resetUtterance()
			case staleTimerFiredCmd:
				p.handleStaleTimerFired(c.gen)
			case preSynthDoneCmd:
				p.handlePreSynthDone(c)
			case finalAudioDoneCmd:
				p.handleFinalAudioDone(c)
			}
		}
	}
}

// handleSegment implements the eight-step transcript handling path: resolve
// the partner and target language, throttle partials, translate (reusing
// the cached partial translation on an exact-match final), emit the
// caption, and — for partials only — maybe pre-synthesize and maybe arm the
// stale-partial timer; for finals, resolve pending interim/pre-synthesis
// state and deliver at most one audio event.
func (p *Pipeline) handleSegment(seg asrsession.Segment) {
	now := time.Now()
	srcMT := langreg.MTFromASR(seg.SourceLang)

	partner, hasPartner := p.registry.Partner(p.meetingID, p.info.ConnID)
	partnerPresent := hasPartner && partner.IsOpen()

	var dstMT string
	if partnerPresent {
		dstMT = langreg.MT(partner.Locale())
	} else {
		dstMT = langreg.MT(p.info.DeclaredTargetLocale)
	}

	if !seg.IsFinal {
		if !p.state.lastPartialEmitAt.IsZero() && now.Sub(p.state.lastPartialEmitAt) < partialEmitThrottle {
			return
		}
		p.state.lastPartialEmitAt = now
	}

	var translated string
	switch {
	case srcMT == dstMT:
		translated = seg.Text
	case seg.IsFinal && p.state.partialTx != nil && p.state.partialTx.originalText == seg.Text:
		translated = p.state.partialTx.translatedText
	default:
		translated = p.translator.Translate(context.Background(), seg.Text, srcMT, dstMT)
	}

	if seg.IsFinal {
		p.state.partialTx = nil
	} else {
		p.state.partialTx = &partialCache{originalText: seg.Text, translatedText: translated}
	}

	if partnerPresent {
		partner.SendCaption(CaptionEvent{
			SpeakerAttendeeID: p.info.AttendeeID,
			SpeakerName:       p.info.DisplayName,
			OriginalText:      seg.Text,
			TranslatedText:    translated,
			IsFinal:           seg.IsFinal,
			SourceLang:        srcMT,
			TargetLang:        dstMT,
			StartMs:           seg.StartMs,
			EndMs:             seg.EndMs,
		})
	}

	if !seg.IsFinal {
		p.handlePartialAux(seg, translated, dstMT, partner, partnerPresent, now)
		return
	}

	p.handleFinal(translated, dstMT, partner, partnerPresent)
}

// handlePartialAux runs the two optional partial-only side effects: the
// speculative pre-synthesis call and the stale-partial fallback timer. Both
// only trigger once the translated text is long enough to be worth the
// provider call.
func (p *Pipeline) handlePartialAux(seg asrsession.Segment, translated, dstMT string, partner PartnerConn, partnerPresent bool, now time.Time) {
	if !partnerPresent || len([]rune(translated)) <= preSynthMinRunes {
		return
	}

	gen := p.state.gen

	if now.Sub(p.state.lastPreSynthAt) >= preSynthThrottle {
		p.state.lastPreSynthAt = now
		p.state.preSynth = &preSynthSlot{gen: gen, translatedText: translated}
		locale := partner.Locale()
		p.pool.Submit(func() {
			audio, _ := p.synth.Synthesize(context.Background(), translated, locale)
			p.send(preSynthDoneCmd{gen: gen, translated: translated, audio: audio})
		})
	}

	if !p.state.interimFired {
		p.state.latest = &latestPartial{translatedText: translated, startMs: seg.StartMs, endMs: seg.EndMs}
		if p.state.staleTimer != nil {
			p.state.staleTimer.Stop()
		}
		p.state.staleTimer = time.AfterFunc(staleTimerDelay, func() {
			p.send(staleTimerFiredCmd{gen: gen})
		})
	}
}

// handleFinal commits exactly one of: no audio (no partner), the
// already-delivered interim audio (nothing further to send), a ready
// pre-synthesis slot (deliver immediately), a pending pre-synthesis slot
// (leave an awaiting-final ticket so its result becomes the final audio),
// or a fresh synthesize call dispatched to the pool.
func (p *Pipeline) handleFinal(translated, dstMT string, partner PartnerConn, partnerPresent bool) {
	if p.state.staleTimer != nil {
		p.state.staleTimer.Stop()
		p.state.staleTimer = nil
	}
	p.state.latest = nil

	if !partnerPresent {
		p.state.resetUtterance()
		return
	}

	if p.state.interimFired {
		p.state.resetUtterance()
		return
	}

	slot := p.state.preSynth
	p.state.preSynth = nil

	if slot != nil && slot.translatedText == translated {
		if slot.ready {
			p.deliverAudio(partner, slot.audio, dstMT, false)
			p.state.resetUtterance()
			return
		}
		p.state.awaiting = &awaitingFinal{gen: slot.gen, translatedText: slot.translatedText, partner: partner, dstMT: dstMT}
		p.state.resetUtterance()
		return
	}

	p.state.resetUtterance()
	speakerID := p.info.AttendeeID
	locale := partner.Locale()
	p.pool.Submit(func() {
		audio, _ := p.synth.Synthesize(context.Background(), translated, locale)
		p.send(finalAudioDoneCmd{partner: partner, dstMT: dstMT, speakerID: speakerID, audio: audio})
	})
}

func (p *Pipeline) handleStaleTimerFired(gen uint64) {
	if gen != p.state.gen || p.state.latest == nil || p.state.interimFired {
		return
	}
	partner, hasPartner := p.registry.Partner(p.meetingID, p.info.ConnID)
	if !hasPartner || !partner.IsOpen() {
		return
	}
	p.state.interimFired = true
	text := p.state.latest.translatedText
	locale := partner.Locale()
	dstMT := langreg.MT(locale)
	p.pool.Submit(func() {
		audio, err := p.synth.Synthesize(context.Background(), text, locale)
		if err != nil || audio == nil || !partner.IsOpen() {
			return
		}
		partner.SendAudio(AudioEvent{SpeakerAttendeeID: p.info.AttendeeID, AudioData: audio, TargetLang: dstMT, IsInterim: true})
	})
}

// handlePreSynthDone either completes an awaiting-final ticket (a final
// arrived while this pre-synthesis was still in flight) or, if the
// utterance that requested it is still current, marks the slot ready for a
// final that hasn't arrived yet. Any other outcome means the utterance
// moved on and the result is abandoned.
func (p *Pipeline) handlePreSynthDone(c preSynthDoneCmd) {
	if aw := p.state.awaiting; aw != nil && aw.gen == c.gen && aw.translatedText == c.translated {
		p.state.awaiting = nil
		p.deliverAudio(aw.partner, c.audio, aw.dstMT, false)
		return
	}
	slot := p.state.preSynth
	if c.gen != p.state.gen || slot == nil || slot.gen != c.gen || slot.translatedText != c.translated {
		return
	}
	slot.audio = c.audio
	slot.ready = true
}

func (p *Pipeline) handleFinalAudioDone(c finalAudioDoneCmd) {
	if c.audio == nil || !c.partner.IsOpen() {
		return
	}
	c.partner.SendAudio(AudioEvent{SpeakerAttendeeID: c.speakerID, AudioData: c.audio, TargetLang: c.dstMT, IsInterim: false})
}

func (p *Pipeline) deliverAudio(partner PartnerConn, audio []byte, dstMT string, interim bool) {
	if audio == nil || !partner.IsOpen() {
		return
	}
	partner.SendAudio(AudioEvent{SpeakerAttendeeID: p.info.AttendeeID, AudioData: audio, TargetLang: dstMT, IsInterim: interim})
}
