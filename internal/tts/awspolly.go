package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// AWSPolly implements Synthesizer against Amazon Polly.
type AWSPolly struct {
	client *polly.Client
}

// NewAWSPolly wraps an already-configured AWS SDK v2 Polly client.
func NewAWSPolly(client *polly.Client) *AWSPolly {
	return &AWSPolly{client: client}
}

func (p *AWSPolly) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	voice := voiceFor(locale)
	if voice == nil {
		return nil, nil
	}

	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voice.Name),
		Engine:       types.Engine(voice.Engine),
		OutputFormat: types.OutputFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("polly synthesize: %w", err)
	}
	defer out.AudioStream.Close()
	return io.ReadAll(out.AudioStream)
}
