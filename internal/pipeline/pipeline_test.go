package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gensupport/internal/classify"
	"gensupport/internal/kb"
	"gensupport/internal/routing"
	"gensupport/internal/storage"
)

type fakeClassifier struct {
	intent    classify.Intent
	sentiment classify.Sentiment
}

func (f fakeClassifier) Intent(context.Context, string) classify.Intent       { return f.intent }
func (f fakeClassifier) Sentiment(context.Context, string) classify.Sentiment { return f.sentiment }

type fakeRetriever struct {
	docs []kb.Document
	err  error
}

func (f fakeRetriever) Search(context.Context, string, int) ([]kb.Document, error) {
	return f.docs, f.err
}

type fakeResponder struct {
	email string
	err   error
}

func (f fakeResponder) Email(context.Context, string, classify.Intent, []string, string) (string, error) {
	return f.email, f.err
}

type fakeStore struct {
	nextID    int64
	tickets   []string
	messages  []string
	createErr error
	msgErr    error
}

func (f *fakeStore) CreateTicket(userID, intent, sentiment, action string) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.tickets = append(f.tickets, userID+"/"+intent+"/"+sentiment+"/"+action)
	return f.nextID, nil
}

func (f *fakeStore) AddMessage(_ int64, sender, text string) error {
	if f.msgErr != nil {
		return f.msgErr
	}
	f.messages = append(f.messages, sender+": "+text)
	return nil
}

type fakeRecorder struct {
	records []storage.Record
	err     error
}

func (f *fakeRecorder) Append(r storage.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeRecorder) Load() ([]storage.Record, error) { return f.records, nil }

func docs(texts ...string) []kb.Document {
	out := make([]kb.Document, len(texts))
	for i, t := range texts {
		out[i] = kb.Document{Text: t, OriginIndex: i}
	}
	return out
}

func TestHandleOrderStatusEndToEnd(t *testing.T) {
	store := &fakeStore{}
	rec := &fakeRecorder{}
	o := New(
		fakeClassifier{intent: classify.IntentOrderStatus, sentiment: classify.SentimentNeutral},
		fakeRetriever{docs: docs("Shipping takes 3-5 days.", "Track orders in your account.")},
		fakeResponder{email: "Dear customer, your order is on its way."},
		store, rec, 2,
	)

	res, err := o.Handle(context.Background(), Query{Text: "Where is my order #123?", SourceType: SourceText})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.AgentAction != routing.ActionAutoReply {
		t.Fatalf("action = %s, want auto_reply", res.AgentAction)
	}
	if res.TicketID != 1 {
		t.Fatalf("ticket id = %d", res.TicketID)
	}
	if res.ResponseEmail == "" {
		t.Fatalf("response email is empty")
	}
	if len(res.RetrievedContext) > 2 {
		t.Fatalf("retrieved context too long: %d", len(res.RetrievedContext))
	}
	if res.RunID == "" {
		t.Fatalf("run id not assigned")
	}

	if len(store.tickets) != 1 || !strings.Contains(store.tickets[0], "guest_user/order_status/neutral/auto_reply") {
		t.Fatalf("unexpected ticket rows: %v", store.tickets)
	}
	if len(store.messages) != 2 {
		t.Fatalf("expected user+assistant messages, got %v", store.messages)
	}
	if !strings.HasPrefix(store.messages[0], "user: ") || !strings.HasPrefix(store.messages[1], "assistant: ") {
		t.Fatalf("message senders wrong: %v", store.messages)
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected one interaction record, got %d", len(rec.records))
	}
	if rec.records[0].Intent != "order_status" || rec.records[0].TicketID != 1 {
		t.Fatalf("record fields: %+v", rec.records[0])
	}
}

func TestHandleNegativeSentimentEscalates(t *testing.T) {
	store := &fakeStore{}
	o := New(
		fakeClassifier{intent: classify.IntentRefundRequest, sentiment: classify.SentimentNegative},
		fakeRetriever{docs: docs("Refunds take a week.")},
		fakeResponder{email: "We are sorry."},
		store, nil, 2,
	)

	res, err := o.Handle(context.Background(), Query{Text: "This is terrible, I want a refund NOW", SourceType: SourceText})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.AgentAction != routing.ActionEscalate {
		t.Fatalf("action = %s, want escalate", res.AgentAction)
	}
}

func TestGenerationFailureLeavesNoTicket(t *testing.T) {
	store := &fakeStore{}
	o := New(
		fakeClassifier{intent: classify.IntentGeneralQuery, sentiment: classify.SentimentNeutral},
		fakeRetriever{docs: docs("info")},
		fakeResponder{err: errors.New("model unavailable")},
		store, nil, 2,
	)

	_, err := o.Handle(context.Background(), Query{Text: "hello", SourceType: SourceText})
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageGenerate {
		t.Fatalf("expected generate stage error, got %v", err)
	}
	if len(store.tickets) != 0 || len(store.messages) != 0 {
		t.Fatalf("durable writes before generation succeeded: %v %v", store.tickets, store.messages)
	}
}

func TestRetrievalFailureIsFatal(t *testing.T) {
	o := New(
		fakeClassifier{intent: classify.IntentGeneralQuery, sentiment: classify.SentimentNeutral},
		fakeRetriever{err: errors.New("embedding timeout")},
		fakeResponder{email: "x"},
		&fakeStore{}, nil, 2,
	)
	_, err := o.Handle(context.Background(), Query{Text: "hello", SourceType: SourceText})
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageRetrieve {
		t.Fatalf("expected retrieve stage error, got %v", err)
	}
}

func TestPersistFailureIsSurfaced(t *testing.T) {
	o := New(
		fakeClassifier{intent: classify.IntentOrderStatus, sentiment: classify.SentimentNeutral},
		fakeRetriever{docs: docs("info")},
		fakeResponder{email: "x"},
		&fakeStore{createErr: errors.New("disk full")}, nil, 2,
	)
	_, err := o.Handle(context.Background(), Query{Text: "hello", SourceType: SourceText})
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StagePersist {
		t.Fatalf("expected persist stage error, got %v", err)
	}
}

func TestLogFailureDoesNotFailRun(t *testing.T) {
	o := New(
		fakeClassifier{intent: classify.IntentOrderStatus, sentiment: classify.SentimentNeutral},
		fakeRetriever{docs: docs("info")},
		fakeResponder{email: "x"},
		&fakeStore{},
		&fakeRecorder{err: errors.New("log disk gone")},
		2,
	)
	if _, err := o.Handle(context.Background(), Query{Text: "hello", SourceType: SourceText}); err != nil {
		t.Fatalf("log failure must not fail the run: %v", err)
	}
}
