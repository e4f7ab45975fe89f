// Package models defines data structures and domain types.
package models

// Usage holds the token counts and cost of a single model invocation.
type Usage struct {
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CostUSD             float64 `json:"cost_usd"`
}

// UsageRecord is one immutable accounting unit parsed from a usage log line.
// (ProviderID, MessageID) is the natural key; replays are no-ops at the store.
type UsageRecord struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Usage     Usage  `json:"usage"`
}
