package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the text-generation capability consumed by the classifiers and
// the response generator.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// Embedder is the embedding capability consumed by the semantic index.
// The same embedder must be used for both index build and query so the
// vector space stays consistent.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
