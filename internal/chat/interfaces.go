package chat

import (
	"encoding/json"
	"errors"
)

// ErrNoMessages is returned when a request body matches none of the accepted
// shapes and no conversation can be reconstructed.
var ErrNoMessages = errors.New("no messages provided in request")

// IncomingMessage is one turn as the browser sends it. Older client builds
// put the text under "text" instead of "content"; Text is only consulted when
// Content is empty.
type IncomingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Text    string `json:"text,omitempty"`
}

// FileAttachment is an uploaded file with its inline payload (a base64 data
// URL). Only image/* attachments reach the completion call; everything else
// is carried for persistence only.
type FileAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// ChatRequest is the documented POST /chat schema. RawMessages stays raw so
// the legacy adapter can recover bodies where "messages" is not an array; use
// normalizeMessages rather than reading fields directly.
type ChatRequest struct {
	SessionID   string           `json:"id,omitempty"`
	RawMessages json.RawMessage  `json:"messages,omitempty"`
	Message     *IncomingMessage `json:"message,omitempty"`
	Role        string           `json:"role,omitempty"`
	Content     string           `json:"content,omitempty"`
	Model       string           `json:"model,omitempty"`
	Files       []FileAttachment `json:"files,omitempty"`
}

// ErrorResponse is the failure envelope for every chat route.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ModelsResponse wraps the model listing; Models is always non-nil so the
// empty case serializes as [] rather than null.
type ModelsResponse struct {
	Models any `json:"models"`
}
