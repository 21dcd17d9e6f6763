package translate

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// AWSTranslate implements Client against Amazon Translate.
type AWSTranslate struct {
	client *translate.Client
}

// NewAWSTranslate wraps an already-configured AWS SDK v2 translate client.
func NewAWSTranslate(client *translate.Client) *AWSTranslate {
	return &AWSTranslate{client: client}
}

func (a *AWSTranslate) TranslateOne(ctx context.Context, text, srcMT, dstMT string) (string, error) {
	out, err := a.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(srcMT),
		TargetLanguageCode: aws.String(dstMT),
	})
	if err != nil {
		return "", fmt.Errorf("aws translate: %w", err)
	}
	return aws.ToString(out.TranslatedText), nil
}
