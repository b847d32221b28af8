package streamclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the finite-state descriptor of one in-flight exchange.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"   // request sent, awaiting first byte
	StatusStreaming Status = "streaming" // bytes arriving
	StatusError     Status = "error"     // terminal, recoverable by retry
)

var (
	// ErrBusy is returned when SendMessage is called while an exchange is
	// already in flight; the UI is expected to disable input, so this is a
	// programming-error guard, not a queue.
	ErrBusy = errors.New("an exchange is already in flight")

	// ErrGuestQuotaExceeded is returned when the guest send quota is used up.
	// No network call is made; the OnQuotaExceeded hook has already fired.
	ErrGuestQuotaExceeded = errors.New("guest quota exceeded")
)

// Message is one client-side conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Options configures a Client. All callbacks are optional and are invoked
// synchronously from the goroutine running SendMessage.
type Options struct {
	// SessionID is forwarded as the body's "id" field.
	SessionID string
	// Model is forwarded with every request; empty means server default.
	Model string
	// GuestLimit caps the number of sends for unauthenticated use; zero
	// disables the gate.
	GuestLimit int
	// OnFinish receives the finalized assistant message.
	OnFinish func(Message)
	// OnError receives genuine failures; cancellations never reach it.
	OnError func(error)
	// OnQuotaExceeded fires when the guest gate blocks a send, so the UI can
	// redirect to login.
	OnQuotaExceeded func()
}

// Client drives one streaming chat exchange at a time against a /chat
// endpoint and owns the growing message list. Reads are incremental: each
// received chunk is decoded and appended to the assistant placeholder, and
// observers always see a monotonically growing message.
type Client struct {
	endpoint   string
	httpClient *http.Client
	opts       Options

	mu         sync.Mutex
	messages   []Message
	status     Status
	err        error
	cancel     context.CancelFunc
	generation uint64
	guestUsed  int
}

func New(endpoint string, httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		opts:       opts,
		status:     StatusIdle,
	}
}

// Messages returns a snapshot of the conversation.
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// SetMessages seeds the conversation from persisted history. Only valid
// while idle.
func (c *Client) SetMessages(messages []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages[:0], messages...)
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Cancel aborts the outstanding exchange, if any. The aborted SendMessage
// returns nil, the state returns to idle and no error callback fires.
func (c *Client) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SendMessage runs one full exchange: it appends the user turn immediately,
// posts the conversation, then streams the assistant reply into a placeholder
// message until the stream ends. It blocks until the exchange reaches a
// terminal state.
func (c *Client) SendMessage(ctx context.Context, content string) error {
	c.mu.Lock()
	if c.status == StatusLoading || c.status == StatusStreaming {
		c.mu.Unlock()
		return ErrBusy
	}

	if c.opts.GuestLimit > 0 && c.guestUsed >= c.opts.GuestLimit {
		hook := c.opts.OnQuotaExceeded
		c.mu.Unlock()
		if hook != nil {
			hook()
		}
		return ErrGuestQuotaExceeded
	}
	if c.opts.GuestLimit > 0 {
		c.guestUsed++
	}

	userMessage := Message{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   content,
		CreatedAt: time.Now(),
	}
	c.messages = append(c.messages, userMessage)
	c.status = StatusLoading
	c.err = nil

	// Each call owns a fresh cancellation scope and generation; callbacks
	// from a superseded call compare generations and are ignored.
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.generation++
	gen := c.generation

	history := make([]Message, len(c.messages))
	copy(history, c.messages)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if gen == c.generation {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel()
	}()

	assistantID := uuid.NewString()
	err := c.exchange(ctx, gen, history, assistantID)
	if err == nil {
		return nil
	}

	// Cancellation reaches idle silently: the placeholder keeps whatever
	// partial content it accumulated, and no error callback fires.
	if errors.Is(err, context.Canceled) {
		c.transition(gen, StatusIdle, nil)
		return nil
	}

	c.removeMessage(gen, assistantID)
	c.transition(gen, StatusError, err)
	if c.opts.OnError != nil && c.isCurrent(gen) {
		c.opts.OnError(err)
	}
	return err
}

// ------------------Private helper function------------------

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	ID       string        `json:"id,omitempty"`
	Messages []wireMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
}

type wireError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *Client) exchange(ctx context.Context, gen uint64, history []Message, assistantID string) error {
	payload := wireRequest{
		ID:    c.opts.SessionID,
		Model: c.opts.Model,
	}
	for _, m := range history {
		payload.Messages = append(payload.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure wireError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&failure); decodeErr == nil {
			if failure.Details != "" {
				return errors.New(failure.Details)
			}
			if failure.Error != "" {
				return errors.New(failure.Error)
			}
		}
		return fmt.Errorf("chat request failed with status %d", resp.StatusCode)
	}

	// First byte territory: append the empty assistant placeholder and start
	// the incremental read.
	placeholder := Message{
		ID:        assistantID,
		Role:      "assistant",
		CreatedAt: time.Now(),
	}
	c.appendMessage(gen, placeholder)
	c.transition(gen, StatusStreaming, nil)

	var dec decoder
	var assistantContent string
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if text := dec.Write(buf[:n]); text != "" {
				assistantContent += text
				c.updateMessage(gen, assistantID, assistantContent)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return context.Canceled
			}
			return readErr
		}
	}

	assistantContent += dec.Flush()
	c.updateMessage(gen, assistantID, assistantContent)
	c.transition(gen, StatusIdle, nil)

	if c.opts.OnFinish != nil && c.isCurrent(gen) {
		final := placeholder
		final.Content = assistantContent
		c.opts.OnFinish(final)
	}
	return nil
}

func (c *Client) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Client) transition(gen uint64, status Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.status = status
	c.err = err
}

func (c *Client) appendMessage(gen uint64, m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.messages = append(c.messages, m)
}

func (c *Client) updateMessage(gen uint64, id, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content = content
			return
		}
	}
}

func (c *Client) removeMessage(gen uint64, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return
		}
	}
}
