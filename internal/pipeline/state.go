package pipeline

import "time"

// partialCache remembers the last partial's original/translated pair so a
// final that repeats the same text exactly can skip a redundant translate
// call.
type partialCache struct {
	originalText   string
	translatedText string
}

// preSynthSlot holds an in-flight or completed speculative TTS call for the
// current utterance's latest partial. gen ties it to the utterance that
// requested it; a slot whose gen no longer matches pipelineState.gen is
// abandoned and its eventual result is discarded.
type preSynthSlot struct {
	gen            uint64
	translatedText string
	audio          []byte
	ready          bool
}

// latestPartial is what the 5s stale-partial timer synthesizes if no final
// arrives in time.
type latestPartial struct {
	translatedText string
	startMs, endMs int64
}

// awaitingFinal is a ticket left behind when a final matches an in-flight
// (not yet ready) pre-synthesis slot: rather than issue a second TTS call,
// the worker waits for the pending one and delivers it as the final audio
// when it lands.
type awaitingFinal struct {
	gen            uint64
	translatedText string
	partner        PartnerConn
	dstMT          string
}

// pipelineState is PipelineState: everything the single per-connection
// worker goroutine mutates. Nothing outside that goroutine touches it.
type pipelineState struct {
	gen uint64 // bumped once per utterance boundary

	lastPartialEmitAt time.Time
	partialTx         *partialCache

	preSynth       *preSynthSlot
	lastPreSynthAt time.Time

	staleTimer   *time.Timer
	latest       *latestPartial
	interimFired bool

	awaiting *awaitingFinal
}

func newPipelineState() *pipelineState {
	return &pipelineState{}
}

// resetUtterance returns the state to IDLE and bumps gen so any in-flight
// async result tagged with the old gen is recognized as abandoned.
func (s *pipelineState) resetUtterance() {
	s.partialTx = nil
	s.preSynth = nil
	s.lastPreSynthAt = time.Time{}
	if s.staleTimer != nil {
		s.staleTimer.Stop()
		s.staleTimer = nil
	}
	s.latest = nil
	s.interimFired = false
	s.gen++
}
