package db

import (
	"github.com/jmoiron/sqlx"
)

// Store is the shared database handle; repositories embed queries on top of
// it rather than owning their own connections.
type Store struct {
	*sqlx.DB
}

func NewStore(driverName, dataSourceURL string) (*Store, error) {
	database, err := sqlx.Connect(driverName, dataSourceURL)
	if err != nil {
		return nil, err
	}
	return &Store{database}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS user_account (
    id         TEXT PRIMARY KEY,
    username   TEXT NOT NULL UNIQUE,
    password   TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS chat_session (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    model      TEXT NOT NULL,
    user_id    TEXT REFERENCES user_account(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS message (
    id          TEXT PRIMARY KEY,
    session_id  TEXT NOT NULL REFERENCES chat_session(id) ON DELETE CASCADE,
    role        TEXT NOT NULL,
    content     TEXT NOT NULL,
    attachments JSONB,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS message_session_idx ON message (session_id, created_at);
`

// EnsureSchema creates the tables on first boot; every statement is
// idempotent.
func (s *Store) EnsureSchema() error {
	_, err := s.Exec(schema)
	return err
}
