package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"gensupport/internal/analytics"
	"gensupport/internal/classify"
	"gensupport/internal/config"
	"gensupport/internal/kb"
	"gensupport/internal/llm"
	"gensupport/internal/ocr"
	"gensupport/internal/pipeline"
	"gensupport/internal/rag"
	"gensupport/internal/respond"
	"gensupport/internal/scheduler"
	"gensupport/internal/session"
	"gensupport/internal/storage"
	"gensupport/internal/telegram"
	"gensupport/internal/ticket"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}
	ctx := context.Background()

	factory := llm.NewFactory(cfg)
	client, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}
	embedder, err := factory.CreateEmbedder()
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	loader := kb.NewLoader(cfg.KBDir)
	docs, err := loader.Load()
	if err != nil {
		log.Fatalf("failed to load knowledge base: %v", err)
	}
	index := rag.New(embedder, cfg.IndexFilePath, cfg.LLMTimeout)
	if err := index.LoadOrBuild(ctx, docs); err != nil {
		log.Fatalf("failed to prepare semantic index: %v", err)
	}

	store, err := ticket.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open ticket store: %v", err)
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init interaction log: %v", err)
		} else {
			rec = fr
		}
	}

	classifier := classify.New(client, cfg.LLMTimeout)
	orch := pipeline.New(classifier, index, respond.New(client, cfg.LLMTimeout), store, rec, cfg.RetrievalTopK)

	sched := scheduler.New()
	sched.SetRebuildFunction(func(ctx context.Context) error {
		fresh, err := loader.Load()
		if err != nil {
			return err
		}
		return index.Build(ctx, fresh)
	})
	if rec != nil {
		sched.SetReportFunction(func(ctx context.Context) error {
			records, err := rec.Load()
			if err != nil {
				return err
			}
			stats := analytics.AnalyzeDaily(records, time.Now().UTC())
			log.Printf("daily report:\n%s", stats.Summary())
			return nil
		})
	}
	if err := sched.Start(cfg.ReindexCronTab); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		orch,
		session.NewManager(cfg.FreeUsageLimit),
		classifier,
		ocr.NewVision(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.VisionModel),
		store,
		rec,
		cfg.AdminUserID,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start(ctx)
}
