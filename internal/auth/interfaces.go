package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// SessionCookie carries the JWT between requests; GuestCookie marks an
// unauthenticated browser that chose guest mode.
const (
	SessionCookie    = "session-token"
	GuestCookie      = "guest-mode"
	guestCookieAge   = 86400
	sessionCookieAge = 86400
)

type Service interface {
	Login(req LoginRequest) (*LoginResponse, error)
	VerifyToken(token string) (*Identity, error)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Identity is the authenticated principal extracted from a verified token.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}
