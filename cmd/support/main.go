package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gensupport/internal/classify"
	"gensupport/internal/config"
	"gensupport/internal/kb"
	"gensupport/internal/llm"
	"gensupport/internal/mailer"
	"gensupport/internal/ocr"
	"gensupport/internal/pipeline"
	"gensupport/internal/rag"
	"gensupport/internal/respond"
	"gensupport/internal/storage"
	"gensupport/internal/ticket"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()
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

	docs, err := kb.NewLoader(cfg.KBDir).Load()
	if err != nil {
		log.Fatalf("failed to load knowledge base: %v", err)
	}
	index := rag.New(embedder, cfg.IndexFilePath, cfg.LLMTimeout)
	if err := index.LoadOrBuild(ctx, docs); err != nil {
		log.Fatalf("failed to prepare semantic index: %v", err)
	}
	log.Printf("semantic index ready: %d documents", index.Size())

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

	orch := pipeline.New(
		classify.New(client, cfg.LLMTimeout),
		index,
		respond.New(client, cfg.LLMTimeout),
		store,
		rec,
		cfg.RetrievalTopK,
	)
	extractor := ocr.NewVision(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.VisionModel)

	var sender *mailer.GmailSender
	if cfg.GmailCredentialsJSON != "" && cfg.GmailRefreshToken != "" {
		sender, err = mailer.NewGmail(ctx, []byte(cfg.GmailCredentialsJSON), cfg.GmailRefreshToken, cfg.SupportFromAddress)
		if err != nil {
			log.Printf("email delivery disabled: %v", err)
			sender = nil
		}
	}

	runMenu(ctx, orch, extractor, store, sender)
}

func runMenu(ctx context.Context, orch *pipeline.Orchestrator, extractor ocr.Extractor, store *ticket.Store, sender *mailer.GmailSender) {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\n1. Text Query\n2. Image Query\n3. Recent Tickets\n4. Exit")
		fmt.Print("Select (1/2/3/4): ")
		if !in.Scan() {
			return
		}
		switch strings.TrimSpace(in.Text()) {
		case "1":
			handleTextQuery(ctx, in, orch, sender)
		case "2":
			handleImageQuery(ctx, in, orch, extractor)
		case "3":
			printRecentTickets(store)
		case "4":
			return
		default:
			fmt.Println("Invalid choice")
		}
	}
}

func handleTextQuery(ctx context.Context, in *bufio.Scanner, orch *pipeline.Orchestrator, sender *mailer.GmailSender) {
	fmt.Println("\n=== Text Query Mode ===")
	fmt.Print("Enter customer message: ")
	if !in.Scan() {
		return
	}
	query := strings.TrimSpace(in.Text())
	if query == "" {
		return
	}

	result, err := orch.Handle(ctx, pipeline.Query{Text: query, SourceType: pipeline.SourceText})
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		return
	}
	printResult(result)

	if sender != nil {
		fmt.Print("Send this response by email? Enter address (or leave blank): ")
		if in.Scan() {
			if addr := strings.TrimSpace(in.Text()); addr != "" {
				subject := fmt.Sprintf("Your support ticket #%d", result.TicketID)
				if err := sender.Send(ctx, addr, subject, result.ResponseEmail); err != nil {
					log.Printf("email delivery failed: %v", err)
				} else {
					fmt.Println("Email sent.")
				}
			}
		}
	}
}

func handleImageQuery(ctx context.Context, in *bufio.Scanner, orch *pipeline.Orchestrator, extractor ocr.Extractor) {
	fmt.Println("\n=== Image Query Mode ===")
	fmt.Print("Enter image path: ")
	if !in.Scan() {
		return
	}
	imagePath := strings.TrimSpace(in.Text())
	if _, err := os.Stat(imagePath); err != nil {
		fmt.Println("Incorrect path.")
		return
	}

	text, err := extractor.ExtractText(ctx, imagePath)
	if err != nil {
		log.Printf("text extraction failed: %v", err)
		return
	}
	fmt.Printf("[extracted text]: %s\n", text)

	result, err := orch.Handle(ctx, pipeline.Query{
		Text:       text,
		SourceType: pipeline.SourceImage,
		Metadata:   map[string]string{"image_path": imagePath},
	})
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		return
	}
	printResult(result)
}

func printRecentTickets(store *ticket.Store) {
	tickets, err := store.ListTickets()
	if err != nil {
		log.Printf("failed to list tickets: %v", err)
		return
	}
	if len(tickets) == 0 {
		fmt.Println("No tickets yet.")
		return
	}
	const maxShown = 10
	if len(tickets) > maxShown {
		tickets = tickets[:maxShown]
	}
	for _, t := range tickets {
		fmt.Printf("#%d [%s/%s] %s - %s\n",
			t.TicketID, t.Intent, t.Sentiment, t.AgentAction, t.CreatedAt.Format(time.RFC3339))
	}
}

func printResult(res pipeline.Result) {
	fmt.Printf("\n[ticket #%d, intent=%s, sentiment=%s, action=%s]\n\n%s\n",
		res.TicketID, res.Intent, res.Sentiment, res.AgentAction, res.ResponseEmail)
}
