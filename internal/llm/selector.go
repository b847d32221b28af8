package llm

import "strings"

// DefaultModel is used when a chat request does not name one.
const DefaultModel = "deepseek-r1:8b"

// GroqFallbackModel replaces local-only model families when the hosted API is
// selected.
const GroqFallbackModel = "llama-3.1-8b-instant"

// SelectorConfig is the slice of process configuration the selection policy
// reads. Callers build it fresh per request so credential rotation in
// long-running deployments takes effect without a restart.
type SelectorConfig struct {
	Override   string
	Production bool
	GroqAPIKey string
}

// Selector maps a requested model name plus configuration onto a concrete
// provider and model identifier. Pure; holds only the constructed providers.
type Selector struct {
	ollama Provider
	groq   Provider
	gemini Provider
}

func NewSelector(ollama, groq, gemini Provider) *Selector {
	return &Selector{ollama: ollama, groq: groq, gemini: gemini}
}

// Select applies the policy, in priority order: explicit override, then
// production mode with a Groq credential, then the local server.
func (s *Selector) Select(cfg SelectorConfig, model string) (Provider, string) {
	if model == "" {
		model = DefaultModel
	}

	switch cfg.Override {
	case "ollama":
		return s.ollama, model
	case "groq":
		return s.groq, translateGroqModel(model)
	case "gemini":
		if s.gemini != nil {
			return s.gemini, model
		}
	}

	if cfg.Production && cfg.GroqAPIKey != "" {
		return s.groq, translateGroqModel(model)
	}
	return s.ollama, model
}

// translateGroqModel substitutes local-only model families with the fixed
// hosted fallback; everything else passes through unchanged.
func translateGroqModel(model string) string {
	if strings.Contains(model, "deepseek") || strings.Contains(model, "llama") {
		return GroqFallbackModel
	}
	return model
}
