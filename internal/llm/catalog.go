package llm

import "time"

// GroqCatalog returns the supported hosted models with metadata shaped like
// Ollama's tags listing, so the model picker renders both providers the same
// way. Sizes are zero: the hosted API does not expose weights on disk.
func GroqCatalog() []ModelInfo {
	now := time.Now().UTC()
	return []ModelInfo{
		{
			Name:       "llama-3.1-8b-instant",
			Model:      "llama-3.1-8b-instant",
			ModifiedAt: now,
			Digest:     "groq-llama3.1-8b",
			Details:    ModelDetails{Family: "llama3.1", ParameterSize: "8b", QuantizationLevel: "instant"},
		},
		{
			Name:       "llama-3.3-70b-versatile",
			Model:      "llama-3.3-70b-versatile",
			ModifiedAt: now,
			Digest:     "groq-llama3.3-70b",
			Details:    ModelDetails{Family: "llama3.3", ParameterSize: "70b", QuantizationLevel: "versatile"},
		},
		{
			Name:       "mixtral-8x7b-32768",
			Model:      "mixtral-8x7b-32768",
			ModifiedAt: now,
			Digest:     "groq-mixtral",
			Details:    ModelDetails{Family: "mixtral", ParameterSize: "8x7b", QuantizationLevel: "fp16"},
		},
		{
			Name:       "gemma2-9b-it",
			Model:      "gemma2-9b-it",
			ModifiedAt: now,
			Digest:     "groq-gemma2",
			Details:    ModelDetails{Family: "gemma2", ParameterSize: "9b", QuantizationLevel: "it"},
		},
	}
}
