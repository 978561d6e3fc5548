package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/agent"
	"github.com/capstone-recommender/backend/internal/api/handlers"
	"github.com/capstone-recommender/backend/internal/cache/redis"
	"github.com/capstone-recommender/backend/internal/chatstore/sqlite"
	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/internal/embedding"
	"github.com/capstone-recommender/backend/internal/llm"
	"github.com/capstone-recommender/backend/internal/metrics"
	"github.com/capstone-recommender/backend/internal/middleware/ratelimit"
	"github.com/capstone-recommender/backend/internal/middleware/security"
	"github.com/capstone-recommender/backend/internal/middleware/validation"
	"github.com/capstone-recommender/backend/internal/retrieval"
	"github.com/capstone-recommender/backend/internal/vector/memory"
	"github.com/capstone-recommender/backend/internal/vector/milvus"
	"github.com/capstone-recommender/backend/pkg/config"
	appLogger "github.com/capstone-recommender/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Capstone Recommender API Server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// The embedding cache is optional. A missing Redis degrades to uncached
	// embeddings rather than blocking startup.
	var embedCache embedding.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			embedCache = redisClient
		}
	}

	offline := cfg.LLM.Provider == "offline"
	if !offline && cfg.LLM.APIKey == "" {
		appLogger.Warn("No LLM API key configured, falling back to offline provider")
		offline = true
	}

	var embedder domain.Embedder
	var index domain.VectorIndex
	if offline {
		embedder = embedding.NewDeterministic(cfg.LLM.EmbeddingDim)
		index = memory.NewIndex(cfg.LLM.EmbeddingDim)
		appLogger.Info("Offline mode: deterministic embedder with in-memory index")
	} else {
		embedder = embedding.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel, cfg.LLM.EmbeddingDim, embedCache)

		milvusClient, err := milvus.NewClient(cfg.Milvus.Endpoint, cfg.Milvus.CollectionName, cfg.Milvus.VectorDim)
		if err != nil {
			appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
		}
		defer milvusClient.Close()

		if err := milvusClient.LoadCollection(context.Background()); err != nil {
			appLogger.Fatal("Failed to load collection", zap.Error(err))
		}
		index = milvusClient
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	retriever := retrieval.New(embedder, index, cfg.Retrieval.TopK, cfg.Retrieval.SnippetChars)

	chatAgent := agent.New(retriever, llmClient, store, agent.Config{
		HistoryLimit:  cfg.Context.HistoryLimit,
		ContextBudget: cfg.Context.BudgetChars,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Chat-Client",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()

	chatHandler := handlers.NewChatHandler(chatAgent, store)
	recommendHandler := handlers.NewRecommendHandler(chatAgent, store)
	wsHandler := handlers.NewWebSocketHandler(chatAgent)

	api := app.Group("/api/v1")
	api.Use(limiter.Middleware())
	api.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	api.Post("/chats", chatHandler.HandleChat)
	api.Get("/chats", chatHandler.ListChats)
	api.Get("/chats/:id/messages", chatHandler.GetMessages)

	api.Post("/recommendations", recommendHandler.HandleRecommendation)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.Handler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
