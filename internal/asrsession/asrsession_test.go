package asrsession

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeConn struct {
	sent    [][]byte
	closed  bool
	sendErr error
}

func (c *fakeConn) Send(frame []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, frame)
	return nil
}
func (c *fakeConn) KeepAlive() error            { return nil }
func (c *fakeConn) Finish(context.Context) error { return nil }
func (c *fakeConn) Close() error                { c.closed = true; return nil }

type fakeBackend struct {
	conn *fakeConn
	err  error
}

func (b *fakeBackend) Open(context.Context, string, chan<- Segment) (Conn, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.conn, nil
}

func TestSessionBecomesAliveAfterSuccessfulOpen(t *testing.T) {
	backend := &fakeBackend{conn: &fakeConn{}}
	s := New(backend, "en-US", zap.NewNop())
	defer s.Stop()

	deadline := time.Now().Add(time.Second)
	for !s.Alive() {
		if time.Now().After(deadline) {
			t.Fatal("session never became alive")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSessionStaysNotAliveWhenBackendNeverConnects(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connect refused")}
	s := New(backend, "en-US", zap.NewNop())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if s.Alive() {
		t.Fatal("expected session to stay not-alive while every connect attempt fails")
	}
}

func TestPushDoesNotBlockWhenFIFOIsFull(t *testing.T) {
	backend := &fakeBackend{conn: &fakeConn{}}
	s := New(backend, "en-US", zap.NewNop())
	defer s.Stop()

	for i := 0; i < fifoDepth+10; i++ {
		s.Push([]byte{byte(i)})
	}
	// No assertion beyond "does not block, does not panic": Push must
	// never apply back-pressure to the audio-ingestion caller.
}
