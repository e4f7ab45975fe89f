// Package models defines data structures and domain types.
package models

import (
	"sort"
	"time"
)

// ModelUsage is the lifetime aggregate for a single model.
type ModelUsage struct {
	Model               string  `json:"model"`
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CostUSD             float64 `json:"cost_usd"`
	MessageCount        int64   `json:"message_count"`
}

// CacheHitRate returns cache reads as a fraction of cache reads plus input.
func (m ModelUsage) CacheHitRate() float64 {
	return cacheHitRate(m.CacheReadTokens, m.InputTokens)
}

// LifetimeStats is the on-demand snapshot of all usage ever recorded,
// recomputed per query, never persisted.
type LifetimeStats struct {
	TotalInputTokens         int64        `json:"total_input_tokens"`
	TotalOutputTokens        int64        `json:"total_output_tokens"`
	TotalCacheReadTokens     int64        `json:"total_cache_read_tokens"`
	TotalCacheCreationTokens int64        `json:"total_cache_creation_tokens"`
	TotalCostUSD             float64      `json:"total_cost_usd"`
	TotalSessions            int64        `json:"total_sessions"`
	TotalMessages            int64        `json:"total_messages"`
	CacheHitRate             float64      `json:"cache_hit_rate"`
	Models                   []ModelUsage `json:"models"`
	UpdatedAt                string       `json:"updated_at"`
}

// Finalize computes the derived cache-hit rate, sorts the model breakdown
// by descending cost, and stamps the snapshot.
func (s *LifetimeStats) Finalize() {
	s.CacheHitRate = cacheHitRate(s.TotalCacheReadTokens, s.TotalInputTokens)
	sort.Slice(s.Models, func(i, j int) bool {
		return s.Models[i].CostUSD > s.Models[j].CostUSD
	})
	s.UpdatedAt = time.Now().Format(time.RFC3339)
}

// TodayStats is the aggregate across all providers for the current local day.
type TodayStats struct {
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CostUSD             float64 `json:"cost_usd"`
	SessionCount        int64   `json:"session_count"`
	MessageCount        int64   `json:"message_count"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
}

// Finalize computes the derived cache-hit rate.
func (s *TodayStats) Finalize() {
	s.CacheHitRate = cacheHitRate(s.CacheReadTokens, s.InputTokens)
}

// DailyActivity is one day of usage summed across all providers.
type DailyActivity struct {
	Date         string  `json:"date"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	SessionCount int64   `json:"session_count"`
	MessageCount int64   `json:"message_count"`
}

// TotalTokens returns input plus output tokens for the day.
func (d DailyActivity) TotalTokens() int64 {
	return d.InputTokens + d.OutputTokens
}

// cacheHitRate is defined as read/(read+input), 0 when the denominator is 0.
func cacheHitRate(cacheRead, input int64) float64 {
	total := cacheRead + input
	if total <= 0 {
		return 0
	}
	return float64(cacheRead) / float64(total)
}
