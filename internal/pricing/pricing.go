// Package pricing provides a static model-name to per-token-rate lookup
// used to estimate cost for usage lines that carry no cost field.
package pricing

import "strings"

// Rates holds per-million-token prices in USD for one model.
type Rates struct {
	InputPerMillion         float64
	OutputPerMillion        float64
	CacheReadPerMillion     float64
	CacheCreationPerMillion float64
}

// Placeholder list prices; a later version may load these from config.
var table = map[string]Rates{
	"claude-3-opus": {
		InputPerMillion:     15.0,
		OutputPerMillion:    75.0,
		CacheReadPerMillion: 1.5,
	},
	"claude-3-sonnet": {
		InputPerMillion:     3.0,
		OutputPerMillion:    15.0,
		CacheReadPerMillion: 0.3,
	},
	"claude-3-haiku": {
		InputPerMillion:     0.25,
		OutputPerMillion:    1.25,
		CacheReadPerMillion: 0.025,
	},
	"claude-3-5-sonnet": {
		InputPerMillion:     3.0,
		OutputPerMillion:    15.0,
		CacheReadPerMillion: 0.3,
	},
	"claude-3-5-haiku": {
		InputPerMillion:     0.8,
		OutputPerMillion:    4.0,
		CacheReadPerMillion: 0.08,
	},
}

// Lookup returns the rates for a model and whether the model is known.
// Model identifiers carry version suffixes ("claude-3-opus-20240229"),
// so matching is by family substring, longest family first.
func Lookup(model string) (Rates, bool) {
	if r, ok := table[model]; ok {
		return r, true
	}

	var best string
	for family := range table {
		if strings.Contains(model, family) && len(family) > len(best) {
			best = family
		}
	}
	if best == "" {
		return Rates{}, false
	}
	return table[best], true
}

// Cost estimates the USD cost of one invocation. Unknown models cost 0.
func Cost(model string, inputTokens, outputTokens, cacheReadTokens, cacheCreationTokens int64) float64 {
	r, ok := Lookup(model)
	if !ok {
		return 0
	}

	const million = 1_000_000.0
	return float64(inputTokens)/million*r.InputPerMillion +
		float64(outputTokens)/million*r.OutputPerMillion +
		float64(cacheReadTokens)/million*r.CacheReadPerMillion +
		float64(cacheCreationTokens)/million*r.CacheCreationPerMillion
}
