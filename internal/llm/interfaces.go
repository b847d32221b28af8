package llm

import (
	"context"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContentPart is one element of a structured message content: a text part or
// an inline image (base64 data URL, as uploaded by the browser).
type ContentPart struct {
	Type  string `json:"type"` // "text" or "image"
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Message is one conversation turn. Content carries plain text; when Parts is
// non-empty it takes precedence and Content is ignored.
type Message struct {
	Role    string        `json:"role"`
	Content string        `json:"content"`
	Parts   []ContentPart `json:"parts,omitempty"`
}

type CompletionRequest struct {
	Messages []Message
	Model    string
}

// StreamChunk is one fragment of a streaming completion. Err is set when the
// upstream stream broke after it was established; the channel is closed right
// after either Done or Err.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (Message, error)
	StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
}

// ModelLister is implemented by providers that can enumerate their installed
// models (only Ollama today; hosted providers use the static catalog).
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ModelInfo mirrors the Ollama /api/tags entry shape; hosted catalogs are
// reported in the same shape so the UI renders both identically.
type ModelInfo struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

type ModelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}
