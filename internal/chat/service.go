package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/huydq/ollachat/internal/llm"
)

// ConfigFunc supplies the selection-relevant configuration. It is invoked on
// every request so rotated credentials or a flipped override are honored
// without a restart.
type ConfigFunc func() llm.SelectorConfig

// ChatService normalizes chat requests and relays the selected provider's
// token stream to the response writer, byte for byte.
type ChatService struct {
	selector *llm.Selector
	cfg      ConfigFunc
}

func NewChatService(selector *llm.Selector, cfg ConfigFunc) *ChatService {
	return &ChatService{selector: selector, cfg: cfg}
}

// StreamChatResponse runs one completion exchange. Errors returned before the
// first byte is written can still become a clean HTTP error; once the relay
// has started, upstream failures are logged and the stream simply ends early.
func (cs *ChatService) StreamChatResponse(ctx context.Context, req ChatRequest, w io.Writer) error {
	incoming, err := normalizeMessages(req)
	if err != nil {
		return err
	}

	messages := toLLMMessages(incoming)
	attachImages(messages, req.Files)

	provider, model := cs.selector.Select(cs.cfg(), req.Model)
	log.Printf("chat: provider=%s model=%s messages=%d", provider.Name(), model, len(messages))

	chunks, err := provider.StreamComplete(ctx, llm.CompletionRequest{
		Messages: messages,
		Model:    model,
	})
	if err != nil {
		return fmt.Errorf("start completion stream: %w", err)
	}

	flusher, _ := w.(http.Flusher)
	wrote := false
	for chunk := range chunks {
		if chunk.Err != nil {
			if !wrote {
				return fmt.Errorf("completion stream: %w", chunk.Err)
			}
			// Headers are committed; the client sees a short stream.
			log.Printf("chat: upstream stream broke mid-relay: %v", chunk.Err)
			return nil
		}
		if chunk.Done {
			return nil
		}
		if chunk.Content == "" {
			continue
		}
		if _, err := io.WriteString(w, chunk.Content); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		wrote = true
		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}

// normalizeMessages is the single legacy-compatibility adapter at the
// boundary. The documented shape is a "messages" array; bodies from older
// client builds carry a lone "message" object or top-level role/content
// fields instead. Anything else fails with ErrNoMessages.
func normalizeMessages(req ChatRequest) ([]IncomingMessage, error) {
	if len(req.RawMessages) > 0 {
		var messages []IncomingMessage
		if err := json.Unmarshal(req.RawMessages, &messages); err == nil && len(messages) > 0 {
			return messages, nil
		}
	}

	if req.Content != "" || req.Role != "" {
		role := req.Role
		if role == "" {
			role = llm.RoleUser
		}
		return []IncomingMessage{{Role: role, Content: req.Content}}, nil
	}

	if req.Message != nil {
		return []IncomingMessage{*req.Message}, nil
	}

	return nil, ErrNoMessages
}

func toLLMMessages(incoming []IncomingMessage) []llm.Message {
	result := make([]llm.Message, len(incoming))
	for i, msg := range incoming {
		content := msg.Content
		if content == "" {
			content = msg.Text
		}
		result[i] = llm.Message{Role: msg.Role, Content: content}
	}
	return result
}

// attachImages appends image parts to the final message, and only when that
// message is a user turn. The text survives as the leading part; non-image
// files never reach the completion call.
func attachImages(messages []llm.Message, files []FileAttachment) {
	if len(messages) == 0 || len(files) == 0 {
		return
	}
	last := &messages[len(messages)-1]
	if last.Role != llm.RoleUser {
		return
	}

	var parts []llm.ContentPart
	for _, f := range files {
		if strings.HasPrefix(f.Type, "image/") {
			parts = append(parts, llm.ContentPart{Type: "image", Image: f.Data})
		}
	}
	if len(parts) == 0 {
		return
	}

	last.Parts = append([]llm.ContentPart{{Type: "text", Text: last.Content}}, parts...)
}
