package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huydq/ollachat/internal/db"
)

type RepositoryImpl struct {
	db *db.Store
}

func NewRepositoryImpl(store *db.Store) *RepositoryImpl {
	return &RepositoryImpl{db: store}
}

func (r *RepositoryImpl) CreateSession(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.db.Exec(
		`INSERT INTO chat_session (id, title, model, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Title, s.Model, s.UserID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (r *RepositoryImpl) GetSession(id string) (*Session, error) {
	var s Session
	err := r.db.Get(&s, `SELECT id, title, model, user_id, created_at, updated_at FROM chat_session WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	messages, err := r.ListMessages(id)
	if err != nil {
		return nil, err
	}
	s.Messages = messages
	return &s, nil
}

func (r *RepositoryImpl) ListSessionsByUser(userID string) ([]*Session, error) {
	var sessions []*Session
	err := r.db.Select(&sessions,
		`SELECT id, title, model, user_id, created_at, updated_at FROM chat_session WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	for _, s := range sessions {
		messages, err := r.ListMessages(s.ID)
		if err != nil {
			return nil, err
		}
		s.Messages = messages
	}
	return sessions, nil
}

func (r *RepositoryImpl) UpdateSession(id string, title, model *string) error {
	res, err := r.db.Exec(
		`UPDATE chat_session
		 SET title = COALESCE($2, title), model = COALESCE($3, model), updated_at = $4
		 WHERE id = $1`,
		id, title, model, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return requireRow(res)
}

// ReplaceMessages swaps a session's transcript wholesale inside one
// transaction, matching the client's save-all-on-change behavior.
func (r *RepositoryImpl) ReplaceMessages(sessionID string, messages []Message) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM message WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	// Spread timestamps so ascending order reads back insertion order.
	base := time.Now().UTC()
	for i := range messages {
		m := &messages[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.SessionID = sessionID
		if m.CreatedAt.IsZero() {
			m.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
		if _, err := tx.Exec(
			`INSERT INTO message (id, session_id, role, content, attachments, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.SessionID, m.Role, m.Content, nullableJSON(m.Attachments), m.CreatedAt,
		); err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (r *RepositoryImpl) DeleteSession(id string) error {
	res, err := r.db.Exec(`DELETE FROM chat_session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return requireRow(res)
}

func (r *RepositoryImpl) ListMessages(sessionID string) ([]Message, error) {
	messages := []Message{}
	err := r.db.Select(&messages,
		`SELECT id, session_id, role, content, attachments, created_at FROM message WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return messages, nil
}

func (r *RepositoryImpl) CreateMessage(m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO message (id, session_id, role, content, attachments, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SessionID, m.Role, m.Content, nullableJSON(m.Attachments), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (r *RepositoryImpl) TouchSession(id string) error {
	_, err := r.db.Exec(`UPDATE chat_session SET updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

// ------------------Private helper function------------------

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nullableJSON passes attachment JSON as text so the driver does not encode
// it as bytea; empty input becomes SQL NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
