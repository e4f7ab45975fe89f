package parser

import (
	"errors"
	"testing"
)

func TestParseSettings(t *testing.T) {
	data := []byte(`{"ANTHROPIC_AUTH_TOKEN":"sk-test","ANTHROPIC_BASE_URL":"https://api.example.com"}`)

	settings, err := ParseSettings(data)
	if err != nil {
		t.Fatalf("ParseSettings() failed: %v", err)
	}

	if settings.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want %q", settings.APIKey, "sk-test")
	}
	if settings.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q, want %q", settings.BaseURL, "https://api.example.com")
	}
}

func TestParseSettings_KeyPaths(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantKey string
	}{
		{"uppercase top-level", `{"ANTHROPIC_AUTH_TOKEN":"sk-a"}`, "sk-a"},
		{"lowercase top-level", `{"anthropic_auth_token":"sk-b"}`, "sk-b"},
		{"uppercase under env", `{"env":{"ANTHROPIC_AUTH_TOKEN":"sk-c"}}`, "sk-c"},
		{"lowercase under env", `{"env":{"anthropic_auth_token":"sk-d"}}`, "sk-d"},
		{"top-level wins over env", `{"ANTHROPIC_AUTH_TOKEN":"sk-top","env":{"ANTHROPIC_AUTH_TOKEN":"sk-env"}}`, "sk-top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := ParseSettings([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseSettings() failed: %v", err)
			}
			if settings.APIKey != tt.wantKey {
				t.Errorf("APIKey = %q, want %q", settings.APIKey, tt.wantKey)
			}
		})
	}
}

func TestParseSettings_MissingCredential(t *testing.T) {
	_, err := ParseSettings([]byte(`{"model":"claude-3-opus","env":{}}`))
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}

func TestParseSettings_InvalidJSON(t *testing.T) {
	_, err := ParseSettings([]byte(`{not json`))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestParseUsageLine(t *testing.T) {
	line := `{"id":"msg_1","session_id":"sess_1","model":"claude-3-opus","created_at":"2026-08-29T00:00:00Z","usage":{"input_tokens":10,"output_tokens":5,"cost_usd":0.01}}`

	rec, err := ParseUsageLine(line)
	if err != nil {
		t.Fatalf("ParseUsageLine() failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a usage record")
	}

	if rec.MessageID != "msg_1" {
		t.Errorf("MessageID = %q, want %q", rec.MessageID, "msg_1")
	}
	if rec.SessionID != "sess_1" {
		t.Errorf("SessionID = %q, want %q", rec.SessionID, "sess_1")
	}
	if rec.Model != "claude-3-opus" {
		t.Errorf("Model = %q, want %q", rec.Model, "claude-3-opus")
	}
	if rec.Usage.InputTokens != 10 || rec.Usage.OutputTokens != 5 {
		t.Errorf("tokens = %d/%d, want 10/5", rec.Usage.InputTokens, rec.Usage.OutputTokens)
	}
	if rec.Usage.CostUSD != 0.01 {
		t.Errorf("CostUSD = %v, want 0.01", rec.Usage.CostUSD)
	}
}

func TestParseUsageLine_NestedMessage(t *testing.T) {
	line := `{"type":"assistant","message":{"id":"msg_2","model":"claude-3-sonnet","usage":{"input_tokens":7,"cache_read_input_tokens":3}},"sessionId":"sess_2"}`

	rec, err := ParseUsageLine(line)
	if err != nil {
		t.Fatalf("ParseUsageLine() failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a usage record")
	}

	if rec.MessageID != "msg_2" {
		t.Errorf("MessageID = %q, want %q", rec.MessageID, "msg_2")
	}
	if rec.Model != "claude-3-sonnet" {
		t.Errorf("Model = %q, want %q", rec.Model, "claude-3-sonnet")
	}
	if rec.SessionID != "sess_2" {
		t.Errorf("SessionID = %q, want camelCase fallback", rec.SessionID)
	}
	if rec.Usage.CacheReadTokens != 3 {
		t.Errorf("CacheReadTokens = %d, want 3 (cache_read_input_tokens alias)", rec.Usage.CacheReadTokens)
	}
}

func TestParseUsageLine_SkipNonUsage(t *testing.T) {
	lines := []string{
		`{"type":"summary","summary":"conversation about Go"}`,
		`{"id":"msg_3"}`,
		`{"model":"claude-3-opus"}`,
		`{}`,
	}

	for _, line := range lines {
		rec, err := ParseUsageLine(line)
		if err != nil {
			t.Errorf("ParseUsageLine(%q) error = %v, want skip", line, err)
		}
		if rec != nil {
			t.Errorf("ParseUsageLine(%q) = %+v, want nil (skip)", line, rec)
		}
	}
}

func TestParseUsageLine_InvalidJSON(t *testing.T) {
	_, err := ParseUsageLine("not json at all")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestParseUsageLine_Defaults(t *testing.T) {
	rec, err := ParseUsageLine(`{"id":"msg_4","model":"claude-3-haiku"}`)
	if err != nil {
		t.Fatalf("ParseUsageLine() failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a usage record")
	}

	if rec.SessionID != "unknown" {
		t.Errorf("SessionID = %q, want sentinel %q", rec.SessionID, "unknown")
	}
	if rec.CreatedAt == "" {
		t.Error("CreatedAt should default to now")
	}
	if rec.Usage.InputTokens != 0 || rec.Usage.CostUSD != 0 {
		t.Errorf("usage = %+v, want zero defaults", rec.Usage)
	}
}
