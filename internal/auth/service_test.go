package auth

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huydq/ollachat/internal/config"
	"github.com/huydq/ollachat/internal/user"
)

type memoryUserRepo struct {
	users map[string]user.User
}

func (r *memoryUserRepo) GetByID(id string) (user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, sql.ErrNoRows
}

func (r *memoryUserRepo) GetByUsername(username string) (user.User, error) {
	u, ok := r.users[username]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (r *memoryUserRepo) Create(u *user.User) error {
	if u.ID == "" {
		u.ID = "user-1"
	}
	r.users[u.Username] = *u
	return nil
}

func newAuthService(t *testing.T) (*ServiceImpl, user.Service) {
	t.Helper()
	userService := user.NewServiceImpl(&memoryUserRepo{users: make(map[string]user.User)})
	_, err := userService.CreateUser(&user.CreateUserRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	return NewServiceImpl(userService, config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 1}), userService
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	service, _ := newAuthService(t)

	resp, err := service.Login(LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	identity, err := service.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service, _ := newAuthService(t)

	_, err := service.Login(LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	service, _ := newAuthService(t)

	_, err := service.Login(LoginRequest{Username: "mallory", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	service, _ := newAuthService(t)

	_, err := service.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	service, userService := newAuthService(t)

	other := NewServiceImpl(userService, config.JWTConfig{SecretKey: "other-secret", ExpiryHours: 1})
	resp, err := other.Login(LoginRequest{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	_, err = service.VerifyToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, userService := newAuthService(t)

	_, err := userService.CreateUser(&user.CreateUserRequest{Username: "alice", Password: "again"})
	assert.ErrorIs(t, err, user.ErrAlreadyExists)
}
