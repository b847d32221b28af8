package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huydq/ollachat/internal/llm"
)

func TestNormalizeMessages(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []IncomingMessage
		wantErr error
	}{
		{
			name: "documented messages array",
			body: `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`,
			want: []IncomingMessage{
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: "hello"},
			},
		},
		{
			name: "legacy single message object",
			body: `{"message":{"role":"user","content":"hi"}}`,
			want: []IncomingMessage{{Role: "user", Content: "hi"}},
		},
		{
			name: "legacy top-level role and content",
			body: `{"role":"user","content":"hi"}`,
			want: []IncomingMessage{{Role: "user", Content: "hi"}},
		},
		{
			name: "top-level content without role defaults to user",
			body: `{"content":"hi"}`,
			want: []IncomingMessage{{Role: "user", Content: "hi"}},
		},
		{
			name: "messages not an array falls back to legacy fields",
			body: `{"messages":"garbage","role":"user","content":"hi"}`,
			want: []IncomingMessage{{Role: "user", Content: "hi"}},
		},
		{
			name:    "nothing usable",
			body:    `{"model":"deepseek-r1:8b"}`,
			wantErr: ErrNoMessages,
		},
		{
			name:    "empty messages array",
			body:    `{"messages":[]}`,
			wantErr: ErrNoMessages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ChatRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			got, err := normalizeMessages(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToLLMMessagesTextFallback(t *testing.T) {
	got := toLLMMessages([]IncomingMessage{
		{Role: "user", Content: "", Text: "from the text field"},
		{Role: "assistant", Content: "normal"},
	})
	assert.Equal(t, "from the text field", got[0].Content)
	assert.Equal(t, "normal", got[1].Content)
}

func TestAttachImages(t *testing.T) {
	imageFile := FileAttachment{Name: "cat.png", Type: "image/png", Data: "data:image/png;base64,xxx"}
	pdfFile := FileAttachment{Name: "doc.pdf", Type: "application/pdf", Data: "data:application/pdf;base64,yyy"}

	t.Run("images append to final user message, text survives as leading part", func(t *testing.T) {
		messages := []llm.Message{
			{Role: "user", Content: "earlier"},
			{Role: "user", Content: "what is this?"},
		}
		attachImages(messages, []FileAttachment{imageFile, pdfFile})

		assert.Empty(t, messages[0].Parts)
		require.Len(t, messages[1].Parts, 2)
		assert.Equal(t, llm.ContentPart{Type: "text", Text: "what is this?"}, messages[1].Parts[0])
		assert.Equal(t, llm.ContentPart{Type: "image", Image: imageFile.Data}, messages[1].Parts[1])
	})

	t.Run("final assistant message is left alone", func(t *testing.T) {
		messages := []llm.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		}
		attachImages(messages, []FileAttachment{imageFile})
		assert.Empty(t, messages[1].Parts)
	})

	t.Run("non-image attachments never reach the completion call", func(t *testing.T) {
		messages := []llm.Message{{Role: "user", Content: "summarize"}}
		attachImages(messages, []FileAttachment{pdfFile})
		assert.Empty(t, messages[0].Parts)
	})

	t.Run("empty text still yields a text part", func(t *testing.T) {
		messages := []llm.Message{{Role: "user", Content: ""}}
		attachImages(messages, []FileAttachment{imageFile})
		require.Len(t, messages[0].Parts, 2)
		assert.Equal(t, llm.ContentPart{Type: "text", Text: ""}, messages[0].Parts[0])
	})
}
