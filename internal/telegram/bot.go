// Package telegram exposes the support pipeline as a Telegram bot. It is
// presentation glue: it owns session state and rendering, never pipeline
// internals.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gensupport/internal/analytics"
	"gensupport/internal/pipeline"
	"gensupport/internal/routing"
	"gensupport/internal/session"
	"gensupport/internal/storage"
	"gensupport/internal/ticket"
)

type Handler interface {
	Handle(ctx context.Context, q pipeline.Query) (pipeline.Result, error)
}

type TicketLister interface {
	ListTickets() ([]ticket.Ticket, error)
}

type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	handler     Handler
	sessions    *session.Manager
	detector    LanguageDetector
	extractor   TextExtractor
	tickets     TicketLister
	recorder    storage.Recorder
	adminUserID int64
}

func New(botToken string, handler Handler, sessions *session.Manager, detector LanguageDetector,
	extractor TextExtractor, tickets TicketLister, recorder storage.Recorder, adminUserID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:         api,
		handler:     handler,
		sessions:    sessions,
		detector:    detector,
		extractor:   extractor,
		tickets:     tickets,
		recorder:    recorder,
		adminUserID: adminUserID,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	sessionID := strconv.FormatInt(msg.From.ID, 10)

	if msg.IsCommand() {
		b.handleCommand(msg, sessionID)
		return
	}

	var (
		queryText  string
		sourceType string
		metadata   = map[string]string{}
	)
	switch {
	case len(msg.Photo) > 0:
		text, err := b.extractPhotoText(ctx, msg)
		if err != nil {
			log.Printf("failed to extract photo text: %v", err)
			b.sendMessage(msg.Chat.ID, "Sorry, I could not read that image. Please describe your issue as text.")
			return
		}
		queryText = text
		sourceType = pipeline.SourceImage
	case strings.TrimSpace(msg.Text) != "":
		queryText = strings.TrimSpace(msg.Text)
		sourceType = pipeline.SourceText
	default:
		return
	}

	if !b.sessions.Use(sessionID) {
		b.sendMessage(msg.Chat.ID, "You have used all free queries for this session. Please contact support@gensupport.example for further help.")
		return
	}

	// First text message of a session: surface a language suggestion for
	// confirmation. The suggestion is never consumed automatically.
	if b.detector != nil && sourceType == pipeline.SourceText &&
		b.sessions.Language(sessionID) == "" && b.sessions.PendingLanguage(sessionID) == "" {
		if lang, err := b.detector.DetectLanguage(ctx, queryText); err == nil && lang != "" {
			b.sessions.SuggestLanguage(sessionID, lang)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Detected language: %s. Reply /lang %s to get replies in it, or /lang english to keep English.", lang, lang))
		}
	}

	if lang := b.sessions.Language(sessionID); lang != "" {
		metadata["language_preference"] = lang
	}

	log.Printf("support query from %d (@%s) via %s", msg.From.ID, msg.From.UserName, sourceType)

	result, err := b.handler.Handle(ctx, pipeline.Query{
		Text:       queryText,
		SourceType: sourceType,
		UserID:     sessionID,
		Metadata:   metadata,
	})
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		b.sendMessage(msg.Chat.ID, "Sorry, something went wrong while handling your request. Please try again later.")
		return
	}

	reply := result.ResponseEmail
	if result.AgentAction == routing.ActionEscalate {
		reply += fmt.Sprintf("\n\nTicket #%d has been escalated to our human support team.", result.TicketID)
	} else {
		reply += fmt.Sprintf("\n\nTicket #%d", result.TicketID)
	}
	b.sendMessage(msg.Chat.ID, reply)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message, sessionID string) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, "Hi! Describe your issue (or send a screenshot) and I will help or route you to a human agent.")
	case "lang":
		lang := strings.TrimSpace(msg.CommandArguments())
		if lang == "" {
			b.sendMessage(msg.Chat.ID, "Usage: /lang <english|hindi|hinglish>")
			return
		}
		b.sessions.ConfirmLanguage(sessionID, lang)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Replies will use: %s", lang))
	case "tickets":
		if !b.isAdmin(msg.From.ID) {
			return
		}
		b.sendTicketList(msg.Chat.ID)
	case "stats":
		if !b.isAdmin(msg.From.ID) {
			return
		}
		b.sendDailyStats(msg.Chat.ID)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command.")
	}
}

func (b *Bot) sendTicketList(chatID int64) {
	if b.tickets == nil {
		return
	}
	tickets, err := b.tickets.ListTickets()
	if err != nil {
		log.Printf("failed to list tickets: %v", err)
		b.sendMessage(chatID, "Could not load tickets.")
		return
	}
	if len(tickets) == 0 {
		b.sendMessage(chatID, "No tickets yet.")
		return
	}
	const maxShown = 10
	if len(tickets) > maxShown {
		tickets = tickets[:maxShown]
	}
	var sb strings.Builder
	sb.WriteString("Recent tickets:\n")
	for _, t := range tickets {
		sb.WriteString(fmt.Sprintf("#%d [%s/%s] %s - %s\n",
			t.TicketID, t.Intent, t.Sentiment, t.AgentAction, t.CreatedAt.Format(time.RFC3339)))
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) sendDailyStats(chatID int64) {
	if b.recorder == nil {
		return
	}
	records, err := b.recorder.Load()
	if err != nil {
		log.Printf("failed to load interaction log: %v", err)
		b.sendMessage(chatID, "Could not load stats.")
		return
	}
	stats := analytics.AnalyzeDaily(records, time.Now().UTC())
	b.sendMessage(chatID, stats.Summary())
}

func (b *Bot) extractPhotoText(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	if b.extractor == nil {
		return "", fmt.Errorf("image queries are not enabled")
	}
	// Telegram sends several sizes; the last is the largest.
	photo := msg.Photo[len(msg.Photo)-1]
	url, err := b.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve photo url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	tmp, err := os.CreateTemp("", "support-photo-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	_ = tmp.Close()

	return b.extractor.ExtractText(ctx, filepath.Clean(tmpPath))
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserID != 0 && userID == b.adminUserID
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
