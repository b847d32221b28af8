package user

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetUser(req GetUserRequest) (*GetUserResponse, error) {
	u, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	return &GetUserResponse{
		ID:       u.ID,
		Username: u.Username,
	}, nil
}

func (s *ServiceImpl) GetUserPassword(req GetUserRequest) (*GetUserPasswordResponse, error) {
	u, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	return &GetUserPasswordResponse{
		ID:       u.ID,
		Username: u.Username,
		Password: u.Password,
	}, nil
}

func (s *ServiceImpl) CreateUser(req *CreateUserRequest) (*GetUserResponse, error) {
	_, err := s.repo.GetByUsername(req.Username)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username: req.Username,
		Password: string(hashedPassword),
	}
	if err := s.repo.Create(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &GetUserResponse{ID: u.ID, Username: u.Username}, nil
}

// ------------------Private helper function------------------

func (s *ServiceImpl) lookup(req GetUserRequest) (User, error) {
	var u User
	var err error
	if req.ID != "" {
		u, err = s.repo.GetByID(req.ID)
	} else {
		u, err = s.repo.GetByUsername(req.Username)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
