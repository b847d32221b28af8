package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// GeminiProvider is the override-only third provider family; it is never
// chosen by the default selection policy.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(client *genai.Client) *GeminiProvider {
	return &GeminiProvider{client: client}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (Message, error) {
	model := p.client.GenerativeModel(req.Model)
	res, err := model.GenerateContent(ctx, extractParts(req.Messages)...)
	if err != nil {
		return Message{}, err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return Message{}, errors.New("no candidates found")
	}
	return Message{
		Role:    RoleAssistant,
		Content: fmt.Sprintf("%v", res.Candidates[0].Content.Parts[0]),
	}, nil
}

func (p *GeminiProvider) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	model := p.client.GenerativeModel(req.Model)
	resIterator := model.GenerateContentStream(ctx, extractParts(req.Messages)...)

	chunks := make(chan StreamChunk)
	go func() {
		defer close(chunks)

		send := func(c StreamChunk) bool {
			select {
			case chunks <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			resp, err := resIterator.Next()
			if errors.Is(err, iterator.Done) {
				send(StreamChunk{Done: true})
				return
			}
			if err != nil {
				send(StreamChunk{Err: err})
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if !send(StreamChunk{Content: fmt.Sprintf("%v", part)}) {
					return
				}
			}
		}
	}()

	return chunks, nil
}

// ------------------Private helper function------------------

func extractParts(messages []Message) []genai.Part {
	var parts []genai.Part
	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			parts = append(parts, genai.Text(msg.Content))
			continue
		}
		for _, part := range msg.Parts {
			switch part.Type {
			case "text":
				parts = append(parts, genai.Text(part.Text))
			case "image":
				if blob, ok := decodeImageData(part.Image); ok {
					parts = append(parts, blob)
				}
			}
		}
	}
	return parts
}

// decodeImageData turns a browser data URL into a genai blob. Images that are
// not data URLs are skipped rather than guessed at.
func decodeImageData(data string) (genai.Part, bool) {
	if !strings.HasPrefix(data, "data:image/") {
		return nil, false
	}
	rest := strings.TrimPrefix(data, "data:image/")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return nil, false
	}
	format := rest[:semi]
	raw, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
	if err != nil {
		return nil, false
	}
	return genai.ImageData(format, raw), true
}
