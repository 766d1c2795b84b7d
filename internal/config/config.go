package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel   string      `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	VisionModel      string      `env:"VISION_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Every outbound generation/embedding call is bounded by this timeout.
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Knowledge base / retrieval
	KBDir          string `env:"KB_DIR" envDefault:"dataset/kb"`
	IndexFilePath  string `env:"INDEX_FILE_PATH" envDefault:"data/kb_index.json"`
	RetrievalTopK  int    `env:"RETRIEVAL_TOP_K" envDefault:"2"`
	ReindexCronTab string `env:"REINDEX_CRON" envDefault:"0 3 * * *"`

	// Storage
	DBPath      string `env:"DB_PATH" envDefault:"database/support.db"`
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/interactions.jsonl"`

	// Surfaces
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`
	WebchatPort      int    `env:"WEBCHAT_PORT" envDefault:"8080"`
	FreeUsageLimit   int    `env:"FREE_USAGE_LIMIT" envDefault:"10"`

	// Optional outbound email delivery
	GmailCredentialsJSON string `env:"GMAIL_CREDENTIALS_JSON"`
	GmailRefreshToken    string `env:"GMAIL_REFRESH_TOKEN"`
	SupportFromAddress   string `env:"SUPPORT_FROM_ADDRESS"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
