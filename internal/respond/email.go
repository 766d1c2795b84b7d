// Package respond generates the customer-facing email response. Unlike the
// classifiers there is no safe fallback content here, so generation failures
// propagate to the caller.
package respond

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gensupport/internal/classify"
	"gensupport/internal/llm"
)

const defaultTimeout = 30 * time.Second

type Generator struct {
	llm     llm.Client
	timeout time.Duration
}

func New(client llm.Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{llm: client, timeout: timeout}
}

// Email combines the query, intent and retrieved context into one generation
// request and returns the generated text trimmed of surrounding whitespace.
func (g *Generator) Email(ctx context.Context, query string, intent classify.Intent, retrieved []string, preferredLang string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a helpful, professional customer support assistant.\n\n"+
			"Customer Query:\n%s\n\n"+
			"Issue Type:\n%s\n\n"+
			"Relevant Help Info:\n%s\n\n"+
			"%s\n\n"+
			"Rules:\n"+
			"- 2 short paragraphs only\n"+
			"- Be empathetic & positive\n"+
			"- Add steps / solution guidance if applicable\n"+
			"- DO NOT mention AI, knowledge base, intent classification, sentiment etc.\n"+
			"- Close email with:\nBest Regards,\nGenSupport AI Support Team",
		query, intent, strings.Join(retrieved, "\n"), languageInstruction(preferredLang))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.llm.Generate(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("failed to generate response email: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// languageInstruction picks the tone/language instruction by normalized
// preference prefix. "hing" must be checked before "hi", otherwise Hinglish
// would be swallowed by the Hindi prefix.
func languageInstruction(preferredLang string) string {
	lang := strings.ToLower(strings.TrimSpace(preferredLang))
	switch {
	case strings.HasPrefix(lang, "hing"):
		return "Write response in Hinglish (Hindi+English mix), friendly tone."
	case strings.HasPrefix(lang, "hi"):
		return "Write response fully in Hindi. Use polite, customer-care tone."
	default:
		return "Write response in English with professional tone."
	}
}
