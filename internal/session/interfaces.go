package session

import (
	"encoding/json"
	"errors"
)

// Closed error kinds produced at the storage boundary; callers branch with
// errors.Is instead of inspecting driver error strings.
var (
	ErrNotFound  = errors.New("session not found")
	ErrForbidden = errors.New("unauthorized access to session")
	ErrStore     = errors.New("store failure")
)

type Repository interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	ListSessionsByUser(userID string) ([]*Session, error)
	UpdateSession(id string, title, model *string) error
	ReplaceMessages(sessionID string, messages []Message) error
	DeleteSession(id string) error
	ListMessages(sessionID string) ([]Message, error)
	CreateMessage(m *Message) error
	TouchSession(id string) error
}

type Service interface {
	ListSessions(userID string) ([]*Session, error)
	CreateSession(userID string, req CreateSessionRequest) (*Session, error)
	GetSession(id string) (*Session, error)
	UpdateSession(id string, req UpdateSessionRequest) (*Session, error)
	DeleteSession(id string) error
	ListMessages(userID, sessionID string) ([]Message, error)
	CreateMessage(req CreateMessageRequest) (*Message, error)
}

type CreateSessionRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

type MessageInput struct {
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
}

type UpdateSessionRequest struct {
	Title    *string        `json:"title"`
	Model    *string        `json:"model"`
	Messages []MessageInput `json:"messages"`
}

type CreateMessageRequest struct {
	SessionID   string          `json:"sessionId" binding:"required"`
	Role        string          `json:"role" binding:"required"`
	Content     string          `json:"content" binding:"required"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
}
