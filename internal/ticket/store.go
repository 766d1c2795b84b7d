// Package ticket persists the support interaction trail. Tickets and their
// messages are append-only: created once, never updated or deleted.
//
// Every store call runs in its own transaction; there is deliberately no
// transaction spanning ticket creation and the first message insert. A crash
// between the two leaves a ticket with zero messages, which is an accepted,
// observable, non-corrupting state (it still carries intent/sentiment/action).
package ticket

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Ticket struct {
	TicketID    int64     `gorm:"column:ticket_id;primaryKey;autoIncrement"`
	UserID      string    `gorm:"column:user_id"`
	Intent      string    `gorm:"column:intent"`
	Sentiment   string    `gorm:"column:sentiment"`
	AgentAction string    `gorm:"column:agent_action"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Ticket) TableName() string { return "tickets" }

type Message struct {
	MsgID     int64     `gorm:"column:msg_id;primaryKey;autoIncrement"`
	TicketID  int64     `gorm:"column:ticket_id;index"`
	Sender    string    `gorm:"column:sender"`
	Message   string    `gorm:"column:message"`
	Timestamp time.Time `gorm:"column:timestamp"`
}

func (Message) TableName() string { return "messages" }

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. Pass ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure db dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.AutoMigrate(&Ticket{}, &Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateTicket inserts a new ticket and returns its server-assigned,
// monotonically increasing identifier.
func (s *Store) CreateTicket(userID, intent, sentiment, action string) (int64, error) {
	t := Ticket{
		UserID:      userID,
		Intent:      intent,
		Sentiment:   sentiment,
		AgentAction: action,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&t).Error; err != nil {
		return 0, fmt.Errorf("failed to create ticket: %w", err)
	}
	return t.TicketID, nil
}

// AddMessage appends one message row to a ticket's conversation. A missing
// referenced ticket is a data-integrity error.
func (s *Store) AddMessage(ticketID int64, sender, text string) error {
	var count int64
	if err := s.db.Model(&Ticket{}).Where("ticket_id = ?", ticketID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check ticket %d: %w", ticketID, err)
	}
	if count == 0 {
		return fmt.Errorf("ticket %d does not exist", ticketID)
	}
	m := Message{
		TicketID:  ticketID,
		Sender:    sender,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.Create(&m).Error; err != nil {
		return fmt.Errorf("failed to add message to ticket %d: %w", ticketID, err)
	}
	return nil
}

// ListTickets returns all tickets, newest first.
func (s *Store) ListTickets() ([]Ticket, error) {
	var tickets []Ticket
	if err := s.db.Order("created_at DESC, ticket_id DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// ListMessages returns one ticket's messages in chronological order.
func (s *Store) ListMessages(ticketID int64) ([]Message, error) {
	var messages []Message
	err := s.db.Where("ticket_id = ?", ticketID).
		Order("timestamp ASC, msg_id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for ticket %d: %w", ticketID, err)
	}
	return messages, nil
}
