package llm

import (
	"fmt"
	"strings"

	"gensupport/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent configuration.
type Factory struct {
	OpenaiAPIKey     string
	OpenaiBaseURL    string
	EmbeddingModel   string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenaiAPIKey:     cfg.OpenAIAPIKey,
		OpenaiBaseURL:    cfg.OpenAIBaseURL,
		EmbeddingModel:   cfg.EmbeddingModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, model, f.EmbeddingModel), nil
	case ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

// CreateEmbedder returns the embedding capability. Only the OpenAI provider
// exposes embeddings; the index must use the same embedder for build and
// query, so there is no per-provider switch here.
func (f *Factory) CreateEmbedder() (Embedder, error) {
	if f.OpenaiAPIKey == "" {
		return nil, fmt.Errorf("embeddings require OPENAI_API_KEY")
	}
	return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, "", f.EmbeddingModel), nil
}
