// Package parser turns raw settings blobs and usage-log lines into typed
// domain values. It is pure: no I/O, no shared state, and it never panics
// on untrusted input.
package parser

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kissesu/claude-token-monitor/internal/models"
)

var (
	// ErrInvalidFormat marks input that is not a JSON object at all.
	ErrInvalidFormat = errors.New("invalid JSON")

	// ErrMissingCredential marks a settings blob with no recognized
	// auth-token key path.
	ErrMissingCredential = errors.New("missing auth token in settings")
)

// Settings is the credential extracted from a CLI settings file.
type Settings struct {
	APIKey  string
	BaseURL string
}

// Ordered key paths accepted per logical field. The order is part of the
// wire contract: the first match wins, so additions belong at the end.
var (
	authTokenPaths = []string{
		"ANTHROPIC_AUTH_TOKEN",
		"anthropic_auth_token",
		"env.ANTHROPIC_AUTH_TOKEN",
		"env.anthropic_auth_token",
	}
	baseURLPaths = []string{
		"ANTHROPIC_BASE_URL",
		"anthropic_base_url",
		"env.ANTHROPIC_BASE_URL",
		"env.anthropic_base_url",
	}
	modelPaths     = []string{"model", "message.model"}
	messageIDPaths = []string{"id", "message.id"}
	sessionIDPaths = []string{"session_id", "sessionId", "conversation_id", "chat_id"}
	createdAtPaths = []string{"created_at", "timestamp", "message.created_at"}
	usagePaths     = []string{"usage", "message.usage"}
)

// ParseSettings extracts the auth token and optional base-URL override
// from a settings.json blob.
func ParseSettings(data []byte) (*Settings, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: settings is not valid JSON", ErrInvalidFormat)
	}

	root := gjson.ParseBytes(data)

	apiKey := firstString(root, authTokenPaths)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	return &Settings{
		APIKey:  apiKey,
		BaseURL: firstString(root, baseURLPaths),
	}, nil
}

// ParseUsageLine parses one JSONL line into a usage record.
// Lines without both a model name and a message id are not usage records;
// those return (nil, nil) so the caller can move on. Malformed JSON
// returns an ErrInvalidFormat-wrapped error.
func ParseUsageLine(line string) (*models.UsageRecord, error) {
	if !gjson.Valid(line) {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidFormat)
	}

	root := gjson.Parse(line)

	model := firstString(root, modelPaths)
	messageID := firstString(root, messageIDPaths)
	if model == "" || messageID == "" {
		return nil, nil
	}

	sessionID := firstString(root, sessionIDPaths)
	if sessionID == "" {
		sessionID = "unknown"
	}

	createdAt := firstString(root, createdAtPaths)
	if createdAt == "" {
		createdAt = time.Now().Format(time.RFC3339)
	}

	usage := firstResult(root, usagePaths)

	return &models.UsageRecord{
		SessionID: sessionID,
		MessageID: messageID,
		Model:     model,
		CreatedAt: createdAt,
		Usage: models.Usage{
			InputTokens:         firstInt(usage, []string{"input_tokens", "prompt_tokens"}),
			OutputTokens:        firstInt(usage, []string{"output_tokens", "completion_tokens"}),
			CacheReadTokens:     firstInt(usage, []string{"cache_read_tokens", "cache_read_input_tokens"}),
			CacheCreationTokens: firstInt(usage, []string{"cache_creation_tokens", "cache_creation_input_tokens"}),
			CostUSD:             firstFloat(usage, []string{"cost_usd", "total_cost_usd"}),
		},
	}, nil
}

// firstString returns the first string value found among the given paths.
func firstString(root gjson.Result, paths []string) string {
	for _, path := range paths {
		if v := root.Get(path); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}

// firstResult returns the first existing value among the given paths.
func firstResult(root gjson.Result, paths []string) gjson.Result {
	for _, path := range paths {
		if v := root.Get(path); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// firstInt returns the first numeric value among the given paths, 0 when
// absent. JSON numbers may arrive as int or uint representations.
func firstInt(root gjson.Result, paths []string) int64 {
	for _, path := range paths {
		if v := root.Get(path); v.Type == gjson.Number {
			return v.Int()
		}
	}
	return 0
}

// firstFloat returns the first numeric value among the given paths, 0.0
// when absent. Integers are accepted and widened.
func firstFloat(root gjson.Result, paths []string) float64 {
	for _, path := range paths {
		if v := root.Get(path); v.Type == gjson.Number {
			return v.Float()
		}
	}
	return 0
}
