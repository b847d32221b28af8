package user

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type Service interface {
	GetUser(req GetUserRequest) (*GetUserResponse, error)
	GetUserPassword(req GetUserRequest) (*GetUserPasswordResponse, error)
	CreateUser(req *CreateUserRequest) (*GetUserResponse, error)
}

type Repository interface {
	GetByID(id string) (User, error)
	GetByUsername(username string) (User, error)
	Create(user *User) error
}

type GetUserRequest struct {
	ID       string `json:"id" form:"id" uri:"id"`
	Username string `json:"username" form:"username" uri:"username"`
}

type GetUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type GetUserPasswordResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
