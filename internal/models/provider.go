// Package models defines data structures and domain types.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Provider represents one distinct API credential ever observed.
// The raw credential is never stored; the SHA-256 hash is the identity key
// and the prefix exists only for human display.
type Provider struct {
	ID           int64  `json:"id"`
	APIKeyHash   string `json:"api_key_hash"`
	APIKeyPrefix string `json:"api_key_prefix"`
	DisplayName  string `json:"display_name,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	IsActive     bool   `json:"is_active"`
	FirstSeenAt  string `json:"first_seen_at"`
	LastSeenAt   string `json:"last_seen_at"`
}

// NewProvider builds a provider value from a raw credential.
// ID is zero until the row is inserted.
func NewProvider(apiKey, displayName, baseURL string) Provider {
	now := time.Now().Format(time.RFC3339)

	return Provider{
		APIKeyHash:   HashAPIKey(apiKey),
		APIKeyPrefix: KeyPrefix(apiKey),
		DisplayName:  displayName,
		BaseURL:      baseURL,
		IsActive:     true,
		FirstSeenAt:  now,
		LastSeenAt:   now,
	}
}

// Activated returns a copy marked active with a refreshed last-seen time,
// merging in a non-empty base URL override.
func (p Provider) Activated(baseURL string) Provider {
	p.IsActive = true
	p.LastSeenAt = time.Now().Format(time.RFC3339)
	if baseURL != "" {
		p.BaseURL = baseURL
	}
	return p
}

// Deactivated returns a copy with the active flag cleared.
func (p Provider) Deactivated() Provider {
	p.IsActive = false
	return p
}

// Label returns the display name, falling back to the key prefix.
func (p Provider) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.APIKeyPrefix
}

// HashAPIKey returns the hex-encoded SHA-256 digest of a raw credential.
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// KeyPrefix returns the first 8 characters of a credential for display.
func KeyPrefix(apiKey string) string {
	runes := []rune(apiKey)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes)
}

// ProviderStats pairs a provider with its rollup for today.
type ProviderStats struct {
	Provider                 Provider `json:"provider"`
	TodayInputTokens         int64    `json:"today_input_tokens"`
	TodayOutputTokens        int64    `json:"today_output_tokens"`
	TodayCacheReadTokens     int64    `json:"today_cache_read_tokens"`
	TodayCacheCreationTokens int64    `json:"today_cache_creation_tokens"`
	TodayCostUSD             float64  `json:"today_cost_usd"`
	CacheHitRate             float64  `json:"cache_hit_rate"`
}

// ProviderSwitch is one entry of the provider switch audit log.
type ProviderSwitch struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"provider_id"`
	SwitchedAt string `json:"switched_at"`
}
