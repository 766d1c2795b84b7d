package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"gensupport/internal/llm"
)

type fakeClient struct {
	content string
	err     error
}

func (f fakeClient) Generate(_ context.Context, _ []llm.Message) (llm.Response, error) {
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content}, nil
}

func TestNormalizeIntent(t *testing.T) {
	cases := []struct {
		raw  string
		want Intent
	}{
		{"order_status", IntentOrderStatus},
		{"  Refund_Request \n", IntentRefundRequest},
		{"complaint.", IntentComplaint},
		{"yes", IntentUnknown},
		{"", IntentUnknown},
		{"order status", IntentUnknown},
	}
	for _, tc := range cases {
		if got := NormalizeIntent(tc.raw); got != tc.want {
			t.Fatalf("NormalizeIntent(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeSentiment(t *testing.T) {
	cases := []struct {
		raw  string
		want Sentiment
	}{
		{"negative", SentimentNegative},
		{"NEGATIVE.", SentimentNegative},
		{"Positive\n", SentimentPositive},
		{"yes", SentimentNeutral},
		{"somewhat negative", SentimentNeutral},
		{"", SentimentNeutral},
	}
	for _, tc := range cases {
		if got := NormalizeSentiment(tc.raw); got != tc.want {
			t.Fatalf("NormalizeSentiment(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestClassifierFailsOpen(t *testing.T) {
	c := New(fakeClient{err: errors.New("boom")}, time.Second)
	if got := c.Intent(context.Background(), "where is my order"); got != IntentUnknown {
		t.Fatalf("intent fallback = %s, want %s", got, IntentUnknown)
	}
	if got := c.Sentiment(context.Background(), "this is fine"); got != SentimentNeutral {
		t.Fatalf("sentiment fallback = %s, want %s", got, SentimentNeutral)
	}
}

func TestClassifierUsesModelOutput(t *testing.T) {
	c := New(fakeClient{content: "payment_issue"}, time.Second)
	if got := c.Intent(context.Background(), "card declined"); got != IntentPaymentIssue {
		t.Fatalf("intent = %s, want %s", got, IntentPaymentIssue)
	}
}

func TestDetectLanguagePropagatesError(t *testing.T) {
	c := New(fakeClient{err: errors.New("unavailable")}, time.Second)
	if _, err := c.DetectLanguage(context.Background(), "hola"); err == nil {
		t.Fatalf("expected error from language detection")
	}

	ok := New(fakeClient{content: " Hindi \n"}, time.Second)
	lang, err := ok.DetectLanguage(context.Background(), "text")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if lang != "hindi" {
		t.Fatalf("lang = %q, want %q", lang, "hindi")
	}
}
