package analytics

import (
	"strings"
	"testing"
	"time"

	"gensupport/internal/storage"
)

func TestAnalyzeDailyFiltersAndCounts(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []storage.Record{
		{Timestamp: day.Add(2 * time.Hour), Intent: "order_status", Sentiment: "neutral", AgentAction: "auto_reply", SourceType: "text"},
		{Timestamp: day.Add(5 * time.Hour), Intent: "complaint", Sentiment: "negative", AgentAction: "escalate_to_human_support", SourceType: "image"},
		{Timestamp: day.Add(26 * time.Hour), Intent: "general_query", Sentiment: "neutral", AgentAction: "request_more_details", SourceType: "text"},
		{Timestamp: day.Add(-time.Minute), Intent: "order_status", Sentiment: "positive", AgentAction: "auto_reply", SourceType: "chat_ui"},
	}

	stats := AnalyzeDaily(records, day.Add(10*time.Hour))
	if stats.Date != "2026-03-10" {
		t.Fatalf("date = %s", stats.Date)
	}
	if stats.TotalRuns != 2 {
		t.Fatalf("total runs = %d, want 2", stats.TotalRuns)
	}
	if stats.Escalations != 1 {
		t.Fatalf("escalations = %d, want 1", stats.Escalations)
	}
	if stats.ByIntent["order_status"] != 1 || stats.ByIntent["complaint"] != 1 {
		t.Fatalf("by intent = %v", stats.ByIntent)
	}
	if stats.BySource["image"] != 1 {
		t.Fatalf("by source = %v", stats.BySource)
	}
}

func TestSummaryMentionsCounts(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	stats := AnalyzeDaily([]storage.Record{
		{Timestamp: day.Add(time.Hour), Intent: "refund_request", Sentiment: "negative", AgentAction: "escalate_to_human_support", SourceType: "text"},
	}, day)

	s := stats.Summary()
	for _, want := range []string{"2026-03-10", "Total queries: 1", "Escalations: 1", "refund_request"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}
