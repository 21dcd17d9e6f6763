package asrsession

import (
	"context"
	"fmt"

	listen "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
)

// DeepgramBackend opens streaming sessions against Deepgram's live
// transcription websocket API.
type DeepgramBackend struct {
	apiKey string
}

// NewDeepgramBackend creates a backend authenticated with the given API key.
func NewDeepgramBackend(apiKey string) *DeepgramBackend {
	return &DeepgramBackend{apiKey: apiKey}
}

func (b *DeepgramBackend) Open(ctx context.Context, asrCode string, out chan<- Segment) (Conn, error) {
	cb := &deepgramCallback{out: out, asrCode: asrCode}

	client, err := listen.NewWSUsingCallback(
		ctx,
		b.apiKey,
		&interfaces.ClientOptions{},
		&interfaces.LiveTranscriptionOptions{
			Model:       "nova-2",
			Language:    asrCode,
			Encoding:    "linear16",
			SampleRate:  16000,
			Channels:    1,
			InterimResults: true,
			Punctuate:   true,
		},
		cb,
	)
	if err != nil {
		return nil, fmt.Errorf("deepgram connect: %w", err)
	}
	if ok := client.Connect(); !ok {
		return nil, fmt.Errorf("deepgram connect: handshake failed")
	}
	return &deepgramConn{client: client}, nil
}

type deepgramConn struct {
	client *listen.WSCallback
}

func (c *deepgramConn) Send(frame []byte) error {
	return c.client.WriteBinary(frame)
}

func (c *deepgramConn) KeepAlive() error {
	return c.client.KeepAlive()
}

func (c *deepgramConn) Finish(ctx context.Context) error {
	c.client.Finalize()
	c.client.Stop()
	return nil
}

func (c *deepgramConn) Close() error {
	c.client.Stop()
	return nil
}

// deepgramCallback adapts Deepgram's message callbacks into Segment values.
type deepgramCallback struct {
	out     chan<- Segment
	asrCode string
}

func (cb *deepgramCallback) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	alt := mr.Channel.Alternatives[0]
	cb.out <- Segment{
		Text:       alt.Transcript,
		IsFinal:    mr.IsFinal,
		SourceLang: cb.asrCode,
		StartMs:    int64(mr.Start * 1000),
		EndMs:      int64((mr.Start + mr.Duration) * 1000),
	}
	return nil
}

func (cb *deepgramCallback) UtteranceEnd(ur *msginterfaces.UtteranceEndResponse) error { return nil }
func (cb *deepgramCallback) SpeechStarted(sr *msginterfaces.SpeechStartedResponse) error { return nil }
func (cb *deepgramCallback) Metadata(md *msginterfaces.MetadataResponse) error          { return nil }
func (cb *deepgramCallback) Open(ocr *msginterfaces.OpenResponse) error                 { return nil }
func (cb *deepgramCallback) Close(ccr *msginterfaces.CloseResponse) error               { return nil }
func (cb *deepgramCallback) Error(er *msginterfaces.ErrorResponse) error                { return nil }
func (cb *deepgramCallback) UnhandledEvent(byMsg []byte) error                          { return nil }
