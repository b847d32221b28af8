package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/huydq/ollachat/internal/config"
	"github.com/huydq/ollachat/internal/user"
)

type ServiceImpl struct {
	userService user.Service
	config      config.JWTConfig
}

func NewServiceImpl(userService user.Service, cfg config.JWTConfig) *ServiceImpl {
	return &ServiceImpl{
		userService: userService,
		config:      cfg,
	}
}

func (s *ServiceImpl) Login(req LoginRequest) (*LoginResponse, error) {
	userResponse, err := s.userService.GetUserPassword(user.GetUserRequest{Username: req.Username})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userResponse.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(userResponse.ID, userResponse.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token}, nil
}

// VerifyToken parses and validates a JWT, returning the identity it carries.
func (s *ServiceImpl) VerifyToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: id, Username: username}, nil
}

// ------------------Private helper function------------------

func (s *ServiceImpl) generateToken(id string, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      time.Now().Add(time.Hour * s.config.ExpiryHours).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
