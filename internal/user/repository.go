package user

import (
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

func (r *RepositoryImpl) GetByID(id string) (User, error) {
	var u User
	err := r.db.Get(&u, "SELECT id, username, password, created_at FROM user_account WHERE id = $1", id)
	return u, err
}

func (r *RepositoryImpl) GetByUsername(username string) (User, error) {
	var u User
	err := r.db.Get(&u, "SELECT id, username, password, created_at FROM user_account WHERE username = $1", username)
	return u, err
}

func (r *RepositoryImpl) Create(u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		"INSERT INTO user_account (id, username, password, created_at) VALUES ($1, $2, $3, $4)",
		u.ID, u.Username, u.Password, u.CreatedAt,
	)
	return err
}
