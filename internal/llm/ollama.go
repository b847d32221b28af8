package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaProvider talks to a local Ollama server over its native JSON API.
// The client is injected so callers control timeouts and tests can point it
// at a fake server; there is no package-level instance.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllamaProvider(baseURL string, httpClient *http.Client) *OllamaProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

type ollamaTagsResponse struct {
	Models []ModelInfo `json:"models"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (Message, error) {
	resp, err := p.chat(ctx, req, false)
	if err != nil {
		return Message{}, err
	}
	defer resp.Body.Close()

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Message{}, fmt.Errorf("decode ollama response: %w", err)
	}
	if out.Error != "" {
		return Message{}, errors.New(out.Error)
	}
	return Message{Role: RoleAssistant, Content: out.Message.Content}, nil
}

func (p *OllamaProvider) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := p.chat(ctx, req, true)
	if err != nil {
		return nil, err
	}

	chunks := make(chan StreamChunk)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		// Every send races the context so a consumer that stopped receiving
		// does not strand this goroutine on a channel send forever.
		send := func(c StreamChunk) bool {
			select {
			case chunks <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		decoder := json.NewDecoder(resp.Body)
		for {
			var line ollamaChatResponse
			if err := decoder.Decode(&line); err != nil {
				if errors.Is(err, io.EOF) {
					send(StreamChunk{Done: true})
					return
				}
				send(StreamChunk{Err: fmt.Errorf("read ollama stream: %w", err)})
				return
			}
			if line.Error != "" {
				send(StreamChunk{Err: errors.New(line.Error)})
				return
			}
			if line.Done {
				if line.Message.Content != "" && !send(StreamChunk{Content: line.Message.Content}) {
					return
				}
				send(StreamChunk{Done: true})
				return
			}
			if !send(StreamChunk{Content: line.Message.Content}) {
				return
			}
		}
	}()

	return chunks, nil
}

// ListModels proxies /api/tags.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags: unexpected status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode ollama tags: %w", err)
	}
	return tags.Models, nil
}

// CheckHealth reports whether the server answers /api/tags at all.
func (p *OllamaProvider) CheckHealth(ctx context.Context) bool {
	_, err := p.ListModels(ctx)
	return err == nil
}

func (p *OllamaProvider) chat(ctx context.Context, req CompletionRequest, stream bool) (*http.Response, error) {
	body := ollamaChatRequest{
		Model:    req.Model,
		Messages: toOllamaMessages(req.Messages),
		Stream:   stream,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama chat: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}

// ------------------Private helper function------------------

func toOllamaMessages(messages []Message) []ollamaMessage {
	result := make([]ollamaMessage, len(messages))
	for i, msg := range messages {
		out := ollamaMessage{Role: msg.Role, Content: msg.Content}
		for _, part := range msg.Parts {
			switch part.Type {
			case "text":
				out.Content = part.Text
			case "image":
				out.Images = append(out.Images, stripDataURL(part.Image))
			}
		}
		result[i] = out
	}
	return result
}

// stripDataURL reduces a browser data URL to the bare base64 payload Ollama
// expects; plain base64 passes through unchanged.
func stripDataURL(data string) string {
	if !strings.HasPrefix(data, "data:") {
		return data
	}
	if idx := strings.Index(data, ","); idx >= 0 {
		return data[idx+1:]
	}
	return data
}
