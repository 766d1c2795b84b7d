package ticket

import (
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestTicketIDsMonotonic(t *testing.T) {
	s := newStore(t)
	var prev int64
	for i := 0; i < 5; i++ {
		id, err := s.CreateTicket("guest_user", "order_status", "neutral", "auto_reply")
		if err != nil {
			t.Fatalf("create ticket %d: %v", i, err)
		}
		if id <= prev {
			t.Fatalf("ticket id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestMessageOrdering(t *testing.T) {
	s := newStore(t)
	id, err := s.CreateTicket("guest_user", "refund_request", "negative", "escalate_to_human_support")
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if err := s.AddMessage(id, "user", "I want a refund"); err != nil {
		t.Fatalf("add user message: %v", err)
	}
	if err := s.AddMessage(id, "assistant", "We are sorry to hear that"); err != nil {
		t.Fatalf("add assistant message: %v", err)
	}

	msgs, err := s.ListMessages(id)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != "user" || msgs[1].Sender != "assistant" {
		t.Fatalf("messages out of order: %s then %s", msgs[0].Sender, msgs[1].Sender)
	}
	if msgs[1].Timestamp.Before(msgs[0].Timestamp) {
		t.Fatalf("timestamps out of order")
	}
}

func TestAddMessageToMissingTicketFails(t *testing.T) {
	s := newStore(t)
	if err := s.AddMessage(42, "user", "hello?"); err == nil {
		t.Fatalf("expected error for missing ticket")
	}
}

func TestListTicketsNewestFirst(t *testing.T) {
	s := newStore(t)
	first, err := s.CreateTicket("guest_user", "general_query", "neutral", "request_more_details")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := s.CreateTicket("guest_user", "complaint", "negative", "escalate_to_human_support")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	tickets, err := s.ListTickets()
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].TicketID != second || tickets[1].TicketID != first {
		t.Fatalf("unexpected order: %d, %d", tickets[0].TicketID, tickets[1].TicketID)
	}
}

func TestZeroMessageTicketIsObservable(t *testing.T) {
	s := newStore(t)
	id, err := s.CreateTicket("guest_user", "payment_issue", "neutral", "auto_reply")
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	msgs, err := s.ListMessages(id)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected zero messages, got %d", len(msgs))
	}
}
