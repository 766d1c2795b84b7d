// Package classify runs the single-shot classification signals over a query.
// Intent and sentiment are fail-open: any failure of the underlying
// generation call degrades to the designated fallback label and never
// surfaces as an error. Language detection is a looser signal returning
// free-form text and does surface errors, since its output is only a
// suggestion for the UI.
package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gensupport/internal/llm"
)

const defaultTimeout = 30 * time.Second

type Classifier struct {
	llm     llm.Client
	timeout time.Duration
}

func New(client llm.Client, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Classifier{llm: client, timeout: timeout}
}

func (c *Classifier) Intent(ctx context.Context, text string) Intent {
	prompt := fmt.Sprintf(
		"You are an intent classifier for customer support.\n"+
			"Classify the following message into ONLY ONE of these categories:\n%s\n\n"+
			"Message:\n%s\n\nReturn ONLY the category word.",
		intentOptions(), text)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		log.Printf("intent classification failed, falling back to %s: %v", IntentUnknown, err)
		return IntentUnknown
	}
	return NormalizeIntent(raw)
}

func (c *Classifier) Sentiment(ctx context.Context, text string) Sentiment {
	prompt := fmt.Sprintf(
		"Analyze the sentiment of this customer message.\n"+
			"Only respond with one word: %s\n\nMessage: %s",
		sentimentOptions(), text)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		log.Printf("sentiment analysis failed, falling back to %s: %v", SentimentNeutral, err)
		return SentimentNeutral
	}
	return NormalizeSentiment(raw)
}

// DetectLanguage returns the model's free-form language name for the text.
// The result is a suggestion surfaced to the user for confirmation; routing
// never consumes it.
func (c *Classifier) DetectLanguage(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Detect language for this text. Respond only language name:\n%s", text)
	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("language detection failed: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(raw)), nil
}

func (c *Classifier) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.llm.Generate(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
