// Package asrsession is a push-based adapter over a streaming speech
// recognizer. It hides the chosen provider (Deepgram or AWS
// Transcribe Streaming) behind a single Session type that the Translation
// Pipeline drives with Push/Finish/Stop and drains via Segments().
package asrsession

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Segment carries zero or more partials with growing text followed by
// exactly one final, or nothing if the utterance is aborted.
type Segment struct {
	Text       string
	IsFinal    bool
	SourceLang string // ASR dialect code, e.g. "en-US"
	StartMs    int64
	EndMs      int64
}

const (
	fifoDepth        = 256
	maxRetryAttempts = 5
	retryBaseDelay   = time.Second
	keepAliveEvery   = 8 * time.Second
	idleTimeout      = 10 * time.Minute
	// refreshBefore is how long before idleTimeout a fresh recognizer stream
	// is opened proactively, so a provider-imposed session cap (e.g. an
	// 8-minute hard limit) is never hit mid-utterance.
	refreshBefore = 3 * time.Minute
)

// Conn is one open streaming connection to a recognizer provider.
type Conn interface {
	// Send forwards one PCM16LE mono frame to the provider.
	Send(frame []byte) error
	// KeepAlive pings the provider during silence. Providers that don't
	// need it can no-op.
	KeepAlive() error
	// Finish asks the provider to flush buffered audio and emit terminal
	// transcripts before the connection closes.
	Finish(ctx context.Context) error
	// Close hard-closes the connection without waiting for terminal
	// transcripts.
	Close() error
}

// Backend opens a new provider connection for a given ASR dialect code,
// pushing every transcript it decodes onto out until the connection closes.
type Backend interface {
	Open(ctx context.Context, asrCode string, out chan<- Segment) (Conn, error)
}

// Session is the push-based adapter the pipeline talks to. It owns a bounded
// FIFO (oldest-drop on overflow), provider reconnection with capped backoff,
// and the proactive refresh required by providers with a hard session cap.
type Session struct {
	backend Backend
	asrCode string
	logger  *zap.Logger

	fifo    chan []byte
	out     chan Segment
	alive   atomicBool
	openedAt time.Time

	mu      sync.Mutex
	conn    Conn
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type atomicBool struct {
	mu sync.RWMutex
	v  bool
}

func (a *atomicBool) set(v bool) { a.mu.Lock(); a.v = v; a.mu.Unlock() }
func (a *atomicBool) get() bool  { a.mu.RLock(); defer a.mu.RUnlock(); return a.v }

// New opens a Session against backend for the given ASR dialect code. The
// session starts its pump goroutine immediately; Alive() reports false until
// the first connect attempt succeeds, and stays false forever if the cap of
// maxRetryAttempts is exhausted.
func New(backend Backend, asrCode string, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		backend: backend,
		asrCode: asrCode,
		logger:  logger,
		fifo:    make(chan []byte, fifoDepth),
		out:     make(chan Segment, fifoDepth),
		cancel:  cancel,
	}
	s.wg.Add(1)
	go s.pump(ctx)
	return s
}

// Segments returns the channel of transcripts the recognizer emits, in
// recognizer-emission order.
func (s *Session) Segments() <-chan Segment { return s.out }

// Alive reports whether the session currently has a live provider
// connection.
func (s *Session) Alive() bool { return s.alive.get() }

// Push enqueues one audio frame. Non-blocking: if the FIFO is full, the
// oldest buffered frame is dropped in favor of the new one — acceptable
// because audio is real-time and a late frame is worse than a missing one.
func (s *Session) Push(frame []byte) {
	select {
	case s.fifo <- frame:
	default:
		select {
		case <-s.fifo:
		default:
		}
		select {
		case s.fifo <- frame:
		default:
		}
	}
}

// Finish gracefully closes the current connection, waiting for the provider
// to flush buffered audio and deliver terminal transcripts.
func (s *Session) Finish(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Finish(ctx)
}

// Stop hard-closes the session; no further transcripts will be delivered.
func (s *Session) Stop() {
	s.cancel()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	s.alive.set(false)
}

func (s *Session) pump(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.out)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := s.backend.Open(ctx, s.asrCode, s.out)
		if err != nil {
			attempt++
			if attempt > maxRetryAttempts {
				s.logger.Warn("asr session: retry cap exceeded, giving up", zap.String("asr_code", s.asrCode))
				s.alive.set(false)
				return
			}
			delay := time.Duration(attempt) * retryBaseDelay
			s.logger.Warn("asr session: connect failed, retrying",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
			// Drain whatever arrived during the gap: the FIFO starts empty
			// on the next attempt, so frames buffered here are intentionally
			// lost rather than replayed into a new provider session.
			s.drainFifo()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			continue
		}

		attempt = 0
		s.mu.Lock()
		s.conn = conn
		s.openedAt = time.Now()
		s.mu.Unlock()
		s.alive.set(true)

		if s.runConnection(ctx, conn) {
			return // hard stop requested
		}
		s.alive.set(false)
	}
}

// runConnection forwards FIFO frames to conn, sends a keep-alive every
// keepAliveEvery whether or not audio is flowing, and proactively refreshes before the provider's session cap.
// Returns true if the caller should stop the pump entirely (context
// cancelled), false if it should reconnect.
func (s *Session) runConnection(ctx context.Context, conn Conn) bool {
	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()
	refresh := time.NewTimer(idleTimeout - refreshBefore)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return true
		case frame, ok := <-s.fifo:
			if !ok {
				_ = conn.Close()
				return true
			}
			if err := conn.Send(frame); err != nil {
				s.logger.Warn("asr session: send failed, reconnecting", zap.Error(err))
				_ = conn.Close()
				return false
			}
		case <-keepAlive.C:
			if err := conn.KeepAlive(); err != nil {
				s.logger.Warn("asr session: keep-alive failed, reconnecting", zap.Error(err))
				_ = conn.Close()
				return false
			}
		case <-refresh.C:
			s.logger.Info("asr session: proactive refresh before provider session cap")
			_ = conn.Close()
			return false
		}
	}
}

func (s *Session) drainFifo() {
	for {
		select {
		case <-s.fifo:
		default:
			return
		}
	}
}
