package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	_ "github.com/lib/pq"
	"google.golang.org/api/option"

	"github.com/huydq/ollachat/internal/auth"
	"github.com/huydq/ollachat/internal/chat"
	"github.com/huydq/ollachat/internal/config"
	"github.com/huydq/ollachat/internal/db"
	"github.com/huydq/ollachat/internal/llm"
	"github.com/huydq/ollachat/internal/session"
	"github.com/huydq/ollachat/internal/user"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(envOr("CONFIG_PATH", "config/config.yaml"), envOr("ENV_PATH", "config/.env"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize router
	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Initialize database
	store, err := db.NewStore("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Fatalf("Failed to close database: %v", err)
		}
	}()
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     cfg.CORS.AllowMethods,
		AllowHeaders:     cfg.CORS.AllowHeaders,
		ExposeHeaders:    cfg.CORS.ExposeHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	// LLM providers; each is constructed explicitly and handed to the
	// selector, nothing process-global.
	ollamaProvider := llm.NewOllamaProvider(cfg.Ollama.BaseURL, &http.Client{})
	groqProvider := llm.NewGroqProvider(cfg.Groq.APIKey, cfg.Groq.BaseURL)

	var geminiProvider llm.Provider
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
		if err != nil {
			log.Fatalf("Failed to create gemini client: %v", err)
		}
		defer geminiClient.Close()
		geminiProvider = llm.NewGeminiProvider(geminiClient)
	}

	selector := llm.NewSelector(ollamaProvider, groqProvider, geminiProvider)
	selectorConfig := func() llm.SelectorConfig {
		return llm.SelectorConfig{
			Override:   envOr("AI_PROVIDER", cfg.AI.Provider),
			Production: cfg.AI.Production,
			GroqAPIKey: envOr("GROQ_API_KEY", cfg.Groq.APIKey),
		}
	}

	// User management
	userRepository := user.NewRepositoryImpl(store)
	userService := user.NewServiceImpl(userRepository)

	// Auth management
	authService := auth.NewServiceImpl(userService, cfg.JWT)
	authController := auth.NewControllerImpl(authService, userService)
	router.Use(auth.Identify(authService))
	authController.RegisterRoutes(router)

	// Chat streaming + model listing
	chatService := chat.NewChatService(selector, selectorConfig)
	chatController := chat.NewChatController(chatService, selector, selectorConfig)
	chatController.RegisterRoutes(router)

	// Session persistence
	sessionRepository := session.NewRepositoryImpl(store)
	sessionService := session.NewServiceImpl(sessionRepository)
	sessionController := session.NewControllerImpl(sessionService)
	sessionController.RegisterRoutes(router)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
