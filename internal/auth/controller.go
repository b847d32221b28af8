package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huydq/ollachat/internal/user"
)

type ControllerImpl struct {
	service     Service
	userService user.Service
}

func NewControllerImpl(service Service, userService user.Service) *ControllerImpl {
	return &ControllerImpl{service: service, userService: userService}
}

func (c *ControllerImpl) RegisterRoutes(router *gin.Engine) {
	router.POST("/login", c.Login)
	router.POST("/register", c.Register)
	router.POST("/auth/guest", c.EnterGuestMode)
	router.GET("/auth/me", RequireUser(), c.Me)
}

func (c *ControllerImpl) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	token, err := c.service.Login(req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// Leaving guest mode; the quota cookie has no business surviving login.
	ctx.SetCookie(GuestCookie, "", -1, "/", "", false, false)
	ctx.SetCookie(SessionCookie, token.Token, sessionCookieAge, "/", "", false, true)
	ctx.JSON(http.StatusOK, token)
}

func (c *ControllerImpl) Register(ctx *gin.Context) {
	var req user.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	created, err := c.userService.CreateUser(&req)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// EnterGuestMode hands out the guest cookie the browser presents on later
// requests; the send quota itself is enforced client-side.
func (c *ControllerImpl) EnterGuestMode(ctx *gin.Context) {
	ctx.SetCookie(GuestCookie, "true", guestCookieAge, "/", "", false, false)
	ctx.JSON(http.StatusOK, gin.H{"guest": true})
}

func (c *ControllerImpl) Me(ctx *gin.Context) {
	identity, _ := CurrentIdentity(ctx)
	ctx.JSON(http.StatusOK, identity)
}
