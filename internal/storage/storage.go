package storage

import "time"

// Record is a denormalized snapshot of one pipeline run, appended to a
// durable JSONL log for audit and replay. The log is independent of the
// ticket database on purpose: its survival must not depend on DB
// availability. Records are expected to be appended in chronological order.
type Record struct {
	Timestamp        time.Time         `json:"timestamp"`
	RunID            string            `json:"run_id"`
	TicketID         int64             `json:"ticket_id"`
	SourceType       string            `json:"source_type"`
	QueryText        string            `json:"query_text"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Intent           string            `json:"intent"`
	Sentiment        string            `json:"sentiment"`
	AgentAction      string            `json:"agent_action"`
	RetrievedContext []string          `json:"retrieved_context"`
	ResponseEmail    string            `json:"response_email"`
}

// Recorder abstracts persistence of interaction records.
// Append should atomically append a new record; Load should return records
// in chronological order. Implementations must be safe for concurrent use.
type Recorder interface {
	Append(record Record) error
	Load() ([]Record, error)
}
