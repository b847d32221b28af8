package session

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huydq/ollachat/internal/auth"
)

type ControllerImpl struct {
	service Service
}

func NewControllerImpl(service Service) *ControllerImpl {
	return &ControllerImpl{service: service}
}

func (c *ControllerImpl) RegisterRoutes(router *gin.Engine) {
	router.GET("/sessions", c.ListSessions)
	router.POST("/sessions", c.CreateSession)
	router.GET("/sessions/:id", c.GetSession)
	router.PUT("/sessions/:id", c.UpdateSession)
	router.DELETE("/sessions/:id", c.DeleteSession)
	router.GET("/messages", c.ListMessages)
	router.POST("/messages", c.CreateMessage)
}

func (c *ControllerImpl) ListSessions(ctx *gin.Context) {
	sessions, err := c.service.ListSessions(auth.UserID(ctx))
	if err != nil {
		log.Printf("sessions: list failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (c *ControllerImpl) CreateSession(ctx *gin.Context) {
	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sess, err := c.service.CreateSession(auth.UserID(ctx), req)
	if err != nil {
		log.Printf("sessions: create failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": sess})
}

func (c *ControllerImpl) GetSession(ctx *gin.Context) {
	sess, err := c.service.GetSession(ctx.Param("id"))
	if err != nil {
		c.respondSessionError(ctx, err, "Failed to fetch session")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": sess})
}

func (c *ControllerImpl) UpdateSession(ctx *gin.Context) {
	var req UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sess, err := c.service.UpdateSession(ctx.Param("id"), req)
	if err != nil {
		c.respondSessionError(ctx, err, "Failed to update session")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": sess})
}

func (c *ControllerImpl) DeleteSession(ctx *gin.Context) {
	if err := c.service.DeleteSession(ctx.Param("id")); err != nil {
		c.respondSessionError(ctx, err, "Failed to delete session")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *ControllerImpl) ListMessages(ctx *gin.Context) {
	sessionID := ctx.Query("sessionId")
	if sessionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	userID := auth.UserID(ctx)
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	messages, err := c.service.ListMessages(userID, sessionID)
	if err != nil {
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized access to session"})
			return
		}
		log.Printf("messages: list failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (c *ControllerImpl) CreateMessage(ctx *gin.Context) {
	var req CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	msg, err := c.service.CreateMessage(req)
	if err != nil {
		c.respondSessionError(ctx, err, "Failed to create message")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": msg})
}

// ------------------Private helper function------------------

func (c *ControllerImpl) respondSessionError(ctx *gin.Context, err error, fallback string) {
	if errors.Is(err, ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	log.Printf("sessions: %s: %v", fallback, err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
