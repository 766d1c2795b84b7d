// Package pipeline sequences classification, retrieval, routing, response
// generation and persistence into one "handle a query" operation.
//
// The stages run as a linear state machine: classified -> retrieved ->
// routed -> generated -> persisted -> logged -> returned. Classification and
// retrieval have no data dependency on each other and run concurrently;
// their results are joined before routing. The orchestrator is the only
// component that writes to the ticket store and the interaction log.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"gensupport/internal/classify"
	"gensupport/internal/kb"
	"gensupport/internal/routing"
	"gensupport/internal/storage"
)

// Source types accepted from the caller surfaces.
const (
	SourceText   = "text"
	SourceImage  = "image"
	SourceChatUI = "chat_ui"
)

// Pipeline stages that can fail a run.
const (
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StagePersist  = "persist"
)

const defaultUserID = "guest_user"

// StageError marks a fatal pipeline failure with the stage it occurred in,
// so callers can tell "no response could be generated" apart from "could
// not persist".
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type Query struct {
	Text       string
	SourceType string
	UserID     string
	Metadata   map[string]string
}

type Result struct {
	RunID            string
	TicketID         int64
	SourceType       string
	QueryText        string
	Metadata         map[string]string
	Intent           classify.Intent
	Sentiment        classify.Sentiment
	AgentAction      routing.Action
	RetrievedContext []string
	ResponseEmail    string
}

type Classifier interface {
	Intent(ctx context.Context, text string) classify.Intent
	Sentiment(ctx context.Context, text string) classify.Sentiment
}

type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]kb.Document, error)
}

type Responder interface {
	Email(ctx context.Context, query string, intent classify.Intent, retrieved []string, preferredLang string) (string, error)
}

type TicketStore interface {
	CreateTicket(userID, intent, sentiment, action string) (int64, error)
	AddMessage(ticketID int64, sender, text string) error
}

type Orchestrator struct {
	classifier Classifier
	retriever  Retriever
	responder  Responder
	tickets    TicketStore
	recorder   storage.Recorder
	topK       int
}

// New wires the orchestrator. recorder may be nil; the interaction log is
// best-effort either way.
func New(classifier Classifier, retriever Retriever, responder Responder, tickets TicketStore, recorder storage.Recorder, topK int) *Orchestrator {
	if topK <= 0 {
		topK = 2
	}
	return &Orchestrator{
		classifier: classifier,
		retriever:  retriever,
		responder:  responder,
		tickets:    tickets,
		recorder:   recorder,
		topK:       topK,
	}
}

// Handle runs the full pipeline for one query. Classification degrades to
// fallback labels on failure; retrieval, generation and ticket persistence
// are fatal to the run. No durable write happens before generation
// succeeds, so a failed run leaves no partial ticket.
func (o *Orchestrator) Handle(ctx context.Context, q Query) (Result, error) {
	userID := q.UserID
	if userID == "" {
		userID = defaultUserID
	}
	preferredLang := q.Metadata["language_preference"]
	if preferredLang == "" {
		preferredLang = "English"
	}

	var (
		wg        sync.WaitGroup
		intent    classify.Intent
		sentiment classify.Sentiment
		docs      []kb.Document
		searchErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		intent = o.classifier.Intent(ctx, q.Text)
	}()
	go func() {
		defer wg.Done()
		sentiment = o.classifier.Sentiment(ctx, q.Text)
	}()
	go func() {
		defer wg.Done()
		docs, searchErr = o.retriever.Search(ctx, q.Text, o.topK)
	}()
	wg.Wait()

	if searchErr != nil {
		return Result{}, &StageError{Stage: StageRetrieve, Err: searchErr}
	}
	retrieved := kb.Texts(docs)

	action := routing.Route(intent, sentiment)

	email, err := o.responder.Email(ctx, q.Text, intent, retrieved, preferredLang)
	if err != nil {
		return Result{}, &StageError{Stage: StageGenerate, Err: err}
	}

	ticketID, err := o.tickets.CreateTicket(userID, string(intent), string(sentiment), string(action))
	if err != nil {
		return Result{}, &StageError{Stage: StagePersist, Err: err}
	}
	if err := o.tickets.AddMessage(ticketID, "user", q.Text); err != nil {
		return Result{}, &StageError{Stage: StagePersist, Err: err}
	}
	if err := o.tickets.AddMessage(ticketID, "assistant", email); err != nil {
		return Result{}, &StageError{Stage: StagePersist, Err: err}
	}

	result := Result{
		RunID:            uuid.NewString(),
		TicketID:         ticketID,
		SourceType:       q.SourceType,
		QueryText:        q.Text,
		Metadata:         q.Metadata,
		Intent:           intent,
		Sentiment:        sentiment,
		AgentAction:      action,
		RetrievedContext: retrieved,
		ResponseEmail:    email,
	}

	o.logInteraction(result)
	return result, nil
}

// logInteraction appends the audit record. Failures are swallowed: the log
// never affects the returned result or the run's success.
func (o *Orchestrator) logInteraction(res Result) {
	if o.recorder == nil {
		return
	}
	rec := storage.Record{
		Timestamp:        time.Now().UTC(),
		RunID:            res.RunID,
		TicketID:         res.TicketID,
		SourceType:       res.SourceType,
		QueryText:        res.QueryText,
		Metadata:         res.Metadata,
		Intent:           string(res.Intent),
		Sentiment:        string(res.Sentiment),
		AgentAction:      string(res.AgentAction),
		RetrievedContext: res.RetrievedContext,
		ResponseEmail:    res.ResponseEmail,
	}
	if err := o.recorder.Append(rec); err != nil {
		log.Printf("failed to append interaction record: %v", err)
	}
}
