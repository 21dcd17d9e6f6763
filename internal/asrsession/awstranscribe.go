package asrsession

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming"
	tstypes "github.com/aws/aws-sdk-go-v2/service/transcribestreaming/types"
)

// AWSTranscribeBackend opens streaming sessions against AWS Transcribe
// Streaming.
type AWSTranscribeBackend struct {
	client *transcribestreaming.Client
}

// NewAWSTranscribeBackend creates a backend bound to an already-configured
// AWS SDK v2 transcribestreaming client.
func NewAWSTranscribeBackend(client *transcribestreaming.Client) *AWSTranscribeBackend {
	return &AWSTranscribeBackend{client: client}
}

func (b *AWSTranscribeBackend) Open(ctx context.Context, asrCode string, out chan<- Segment) (Conn, error) {
	output, err := b.client.StartStreamTranscription(ctx, &transcribestreaming.StartStreamTranscriptionInput{
		LanguageCode:         tstypes.LanguageCode(asrCode),
		MediaEncoding:        tstypes.MediaEncodingPcm,
		MediaSampleRateHertz: aws.Int32(16000),
	})
	if err != nil {
		return nil, fmt.Errorf("aws transcribe start stream: %w", err)
	}

	stream := output.GetStream()
	conn := &awsTranscribeConn{stream: stream}
	go conn.pumpEvents(ctx, asrCode, out)
	return conn, nil
}

type awsTranscribeConn struct {
	stream *transcribestreaming.StartStreamTranscriptionEventStream
}

func (c *awsTranscribeConn) Send(frame []byte) error {
	return c.stream.Send(context.Background(), &tstypes.AudioStreamMemberAudioEvent{
		Value: tstypes.AudioEvent{AudioChunk: frame},
	})
}

// KeepAlive is a no-op: AWS Transcribe Streaming does not require explicit
// keep-alive frames during silence.
func (c *awsTranscribeConn) KeepAlive() error { return nil }

func (c *awsTranscribeConn) Finish(ctx context.Context) error {
	// An empty AudioChunk signals end-of-stream; the provider flushes
	// buffered audio and emits terminal transcripts before closing.
	return c.stream.Send(ctx, &tstypes.AudioStreamMemberAudioEvent{
		Value: tstypes.AudioEvent{AudioChunk: []byte{}},
	})
}

func (c *awsTranscribeConn) Close() error {
	return c.stream.Close()
}

func (c *awsTranscribeConn) pumpEvents(ctx context.Context, asrCode string, out chan<- Segment) {
	for event := range c.stream.Events() {
		member, ok := event.(*tstypes.TranscriptResultStreamMemberTranscriptEvent)
		if !ok || member.Value.Transcript == nil {
			continue
		}
		for _, result := range member.Value.Transcript.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			out <- Segment{
				Text:       aws.ToString(alt.Transcript),
				IsFinal:    !result.IsPartial,
				SourceLang: asrCode,
				StartMs:    int64(result.StartTime * 1000),
				EndMs:      int64(result.EndTime * 1000),
			}
		}
	}
}
