// Package analytics computes usage statistics over the interaction log.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gensupport/internal/routing"
	"gensupport/internal/storage"
)

// DailyStats summarizes one day of pipeline runs.
type DailyStats struct {
	Date        string         `json:"date"`
	TotalRuns   int            `json:"total_runs"`
	Escalations int            `json:"escalations"`
	ByIntent    map[string]int `json:"by_intent"`
	ByAction    map[string]int `json:"by_action"`
	BySentiment map[string]int `json:"by_sentiment"`
	BySource    map[string]int `json:"by_source"`
}

// AnalyzeDaily aggregates the records that fall on targetDate's day.
func AnalyzeDaily(records []storage.Record, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:        startOfDay.Format("2006-01-02"),
		ByIntent:    make(map[string]int),
		ByAction:    make(map[string]int),
		BySentiment: make(map[string]int),
		BySource:    make(map[string]int),
	}

	for _, rec := range records {
		if rec.Timestamp.Before(startOfDay) || !rec.Timestamp.Before(endOfDay) {
			continue
		}
		stats.TotalRuns++
		stats.ByIntent[rec.Intent]++
		stats.ByAction[rec.AgentAction]++
		stats.BySentiment[rec.Sentiment]++
		stats.BySource[rec.SourceType]++
		if rec.AgentAction == string(routing.ActionEscalate) {
			stats.Escalations++
		}
	}
	return stats
}

// Summary renders a human-readable report for the admin surfaces.
func (ds *DailyStats) Summary() string {
	out := fmt.Sprintf("Support activity for %s:\n\n- Total queries: %d\n- Escalations: %d\n",
		ds.Date, ds.TotalRuns, ds.Escalations)
	out += section("By intent", ds.ByIntent)
	out += section("By action", ds.ByAction)
	out += section("By sentiment", ds.BySentiment)
	return out
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func section(title string, counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := fmt.Sprintf("\n%s:\n", title)
	for _, k := range keys {
		out += fmt.Sprintf("- %s: %d\n", k, counts[k])
	}
	return out
}
