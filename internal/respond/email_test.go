package respond

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gensupport/internal/classify"
	"gensupport/internal/llm"
)

type fakeClient struct {
	content    string
	err        error
	lastPrompt string
}

func (f *fakeClient) Generate(_ context.Context, msgs []llm.Message) (llm.Response, error) {
	f.lastPrompt = msgs[len(msgs)-1].Content
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content}, nil
}

func TestLanguageInstruction(t *testing.T) {
	cases := []struct {
		pref string
		want string
	}{
		{"Hindi", "Hindi"},
		{"hinglish", "Hinglish"},
		{"HINGLISH", "Hinglish"},
		{"English", "English"},
		{"french", "English"},
		{"", "English"},
	}
	for _, tc := range cases {
		got := languageInstruction(tc.pref)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("languageInstruction(%q) = %q, want mention of %s", tc.pref, got, tc.want)
		}
	}
}

func TestEmailTrimsAndIncludesContext(t *testing.T) {
	fc := &fakeClient{content: "  Dear customer, ...  \n"}
	g := New(fc, time.Second)

	out, err := g.Email(context.Background(), "Where is my order?", classify.IntentOrderStatus,
		[]string{"Shipping takes 3-5 days.", "Track orders in your account."}, "English")
	if err != nil {
		t.Fatalf("email: %v", err)
	}
	if out != "Dear customer, ..." {
		t.Fatalf("output not trimmed: %q", out)
	}
	if !strings.Contains(fc.lastPrompt, "Shipping takes 3-5 days.\nTrack orders in your account.") {
		t.Fatalf("retrieved context not joined into prompt:\n%s", fc.lastPrompt)
	}
	if !strings.Contains(fc.lastPrompt, string(classify.IntentOrderStatus)) {
		t.Fatalf("intent missing from prompt")
	}
}

func TestEmailPropagatesGenerationFailure(t *testing.T) {
	g := New(&fakeClient{err: errors.New("timeout")}, time.Second)
	if _, err := g.Email(context.Background(), "q", classify.IntentGeneralQuery, nil, ""); err == nil {
		t.Fatalf("expected generation failure to propagate")
	}
}
