package translate

import (
	"context"
	"errors"
	"testing"
)

type fakeClient struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeClient) TranslateOne(_ context.Context, text, srcMT, dstMT string) (string, error) {
	f.calls = append(f.calls, srcMT+">"+dstMT)
	if f.fail[srcMT+">"+dstMT] {
		return "", errors.New("boom")
	}
	return dstMT + ":" + text, nil
}

func TestTranslateSameLanguageIsNoop(t *testing.T) {
	fc := &fakeClient{}
	tr := New(fc)
	got := tr.Translate(context.Background(), "hola", "es", "es")
	if got != "hola" || len(fc.calls) != 0 {
		t.Fatalf("expected passthrough with no calls, got %q calls=%v", got, fc.calls)
	}
}

func TestTranslateSingleHopWhenEitherSideIsPivot(t *testing.T) {
	fc := &fakeClient{}
	tr := New(fc)
	got := tr.Translate(context.Background(), "hello", "en", "es")
	if got != "es:hello" {
		t.Fatalf("got %q", got)
	}
	if len(fc.calls) != 1 || fc.calls[0] != "en>es" {
		t.Fatalf("expected one direct hop, got %v", fc.calls)
	}
}

func TestTranslateTwoHopsViaPivotWhenNeitherSideIsPivot(t *testing.T) {
	fc := &fakeClient{}
	tr := New(fc)
	got := tr.Translate(context.Background(), "hola", "es", "hi")
	if got != "hi:en:hola" {
		t.Fatalf("got %q", got)
	}
	if len(fc.calls) != 2 || fc.calls[0] != "es>en" || fc.calls[1] != "en>hi" {
		t.Fatalf("expected pivot hops, got %v", fc.calls)
	}
}

func TestTranslateFailureFallsBackToOriginal(t *testing.T) {
	fc := &fakeClient{fail: map[string]bool{"es>en": true}}
	tr := New(fc)
	got := tr.Translate(context.Background(), "hola", "es", "hi")
	if got != "hola" {
		t.Fatalf("expected fallback to original text, got %q", got)
	}
}
