package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huydq/ollachat/internal/llm"
)

const modelListTimeout = 5 * time.Second

type ChatController struct {
	chatService *ChatService
	selector    *llm.Selector
	cfg         ConfigFunc
}

func NewChatController(chatService *ChatService, selector *llm.Selector, cfg ConfigFunc) *ChatController {
	return &ChatController{chatService: chatService, selector: selector, cfg: cfg}
}

func (cc *ChatController) RegisterRoutes(router *gin.Engine) {
	router.POST("/chat", cc.ChatStreamHandler)
	router.GET("/models", cc.ListModelsHandler)
}

// ChatStreamHandler relays one completion exchange as a chunked text/plain
// body. Failures before the stream is established produce the JSON error
// envelope; after that the response is committed and can only end early.
func (cc *ChatController) ChatStreamHandler(c *gin.Context) {
	var request ChatRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process chat request",
			Details: err.Error(),
		})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")

	ctx := c.Request.Context() // request context carries client cancellation

	if err := cc.chatService.StreamChatResponse(ctx, request, c.Writer); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("chat: client disconnected during streaming")
			return
		}
		if c.Writer.Written() {
			log.Printf("chat: error after response commit: %v", err)
			return
		}
		// Undo the streaming content type; nothing has been written yet.
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process chat request",
			Details: err.Error(),
		})
		return
	}
}

// ListModelsHandler returns the active provider's model set. The hosted
// providers report the static catalog; an unreachable local server degrades
// to an empty list, never an error.
func (cc *ChatController) ListModelsHandler(c *gin.Context) {
	provider, _ := cc.selector.Select(cc.cfg(), "")

	lister, ok := provider.(llm.ModelLister)
	if !ok {
		c.JSON(http.StatusOK, ModelsResponse{Models: llm.GroqCatalog()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), modelListTimeout)
	defer cancel()

	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Printf("models: listing failed, degrading to empty set: %v", err)
		models = []llm.ModelInfo{}
	}
	if models == nil {
		models = []llm.ModelInfo{}
	}
	c.JSON(http.StatusOK, ModelsResponse{Models: models})
}
