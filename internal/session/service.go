package session

import (
	"github.com/huydq/ollachat/internal/llm"
)

const defaultTitle = "New Chat"

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

// ListSessions returns the caller's sessions, newest-updated first. Anonymous
// callers get an empty list, not an error.
func (s *ServiceImpl) ListSessions(userID string) ([]*Session, error) {
	if userID == "" {
		return []*Session{}, nil
	}
	sessions, err := s.repo.ListSessionsByUser(userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*Session{}
	}
	return sessions, nil
}

// CreateSession creates a session owned by userID, or an unowned guest
// session when userID is empty.
func (s *ServiceImpl) CreateSession(userID string, req CreateSessionRequest) (*Session, error) {
	sess := &Session{
		Title: req.Title,
		Model: req.Model,
	}
	if sess.Title == "" {
		sess.Title = defaultTitle
	}
	if sess.Model == "" {
		sess.Model = llm.DefaultModel
	}
	if userID != "" {
		sess.UserID = &userID
	}
	if err := s.repo.CreateSession(sess); err != nil {
		return nil, err
	}
	sess.Messages = []Message{}
	return sess, nil
}

func (s *ServiceImpl) GetSession(id string) (*Session, error) {
	return s.repo.GetSession(id)
}

func (s *ServiceImpl) UpdateSession(id string, req UpdateSessionRequest) (*Session, error) {
	if err := s.repo.UpdateSession(id, req.Title, req.Model); err != nil {
		return nil, err
	}

	if req.Messages != nil {
		replacement := make([]Message, len(req.Messages))
		for i, in := range req.Messages {
			replacement[i] = Message{
				Role:        in.Role,
				Content:     in.Content,
				Attachments: in.Attachments,
			}
		}
		if err := s.repo.ReplaceMessages(id, replacement); err != nil {
			return nil, err
		}
	}

	return s.repo.GetSession(id)
}

func (s *ServiceImpl) DeleteSession(id string) error {
	return s.repo.DeleteSession(id)
}

// ListMessages enforces ownership: the caller must be authenticated and own
// the session. Guest sessions have no owner and are never served here.
func (s *ServiceImpl) ListMessages(userID, sessionID string) ([]Message, error) {
	sess, err := s.repo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID == nil || *sess.UserID != userID {
		return nil, ErrForbidden
	}
	return sess.Messages, nil
}

func (s *ServiceImpl) CreateMessage(req CreateMessageRequest) (*Message, error) {
	msg := &Message{
		SessionID:   req.SessionID,
		Role:        req.Role,
		Content:     req.Content,
		Attachments: req.Attachments,
	}
	if err := s.repo.CreateMessage(msg); err != nil {
		return nil, err
	}
	if err := s.repo.TouchSession(req.SessionID); err != nil {
		return nil, err
	}
	return msg, nil
}
