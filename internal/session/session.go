package session

import (
	"encoding/json"
	"time"
)

// Session is one persisted conversation. UserID is nil for guest sessions,
// which have no owner and are not guarded.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Model     string    `db:"model" json:"model"`
	UserID    *string   `db:"user_id" json:"userId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Messages  []Message `db:"-" json:"messages"`
}

// Message is one persisted turn. Attachments is stored verbatim as JSON; the
// server never interprets it.
type Message struct {
	ID          string          `db:"id" json:"id"`
	SessionID   string          `db:"session_id" json:"sessionId"`
	Role        string          `db:"role" json:"role"`
	Content     string          `db:"content" json:"content"`
	Attachments json.RawMessage `db:"attachments" json:"attachments,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
