// Package translate does text-in/text-out translation with an English
// pivot when neither endpoint is English.
package translate

import (
	"context"

	"github.com/aura-translate/backend/internal/langreg"
)

// Client is the narrow interface the pipeline depends on; AWSTranslate and
// Stub both satisfy it.
type Client interface {
	// TranslateOne performs a single hop from srcMT to dstMT. Callers never
	// invoke this with srcMT == dstMT.
	TranslateOne(ctx context.Context, text, srcMT, dstMT string) (string, error)
}

// Translator applies the pivot algorithm on top of a single-hop Client.
type Translator struct {
	client Client
}

// New wraps a single-hop Client with pivot-aware translate().
func New(client Client) *Translator {
	return &Translator{client: client}
}

// Translate converts text from srcMT to dstMT. If src==dst it returns text
// unchanged. If either side is the pivot language it does one hop;
// otherwise it hops src->pivot->dst. A failure at any hop falls back to the
// original text — translation never blocks the caption path.
func (t *Translator) Translate(ctx context.Context, text, srcMT, dstMT string) string {
	if srcMT == dstMT {
		return text
	}
	if srcMT == langreg.PivotCode || dstMT == langreg.PivotCode {
		out, err := t.client.TranslateOne(ctx, text, srcMT, dstMT)
		if err != nil {
			return text
		}
		return out
	}
	viaPivot, err := t.client.TranslateOne(ctx, text, srcMT, langreg.PivotCode)
	if err != nil {
		return text
	}
	out, err := t.client.TranslateOne(ctx, viaPivot, langreg.PivotCode, dstMT)
	if err != nil {
		return text
	}
	return out
}
