package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"sneakerfit-backend/internal/config"
	"sneakerfit-backend/internal/database"
	"sneakerfit-backend/internal/handlers"
	"sneakerfit-backend/internal/logger"
	"sneakerfit-backend/internal/middleware"
	"sneakerfit-backend/internal/router"
	"sneakerfit-backend/internal/services"
	"sneakerfit-backend/internal/session"
	"sneakerfit-backend/internal/storage"
	"sneakerfit-backend/internal/websocket"
	"sneakerfit-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFile, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting SneakerFit backend...")
	log.Infow("Environment variables loaded", "env", cfg.Env)

	if cfg.UsesDefaultSecret() {
		log.Warn("SECRET_KEY is not set; session cookies are signed with the development key")
	}

	// ──── Step 2: Initialize Session Store ────
	var (
		store       session.Store
		storeClient *redis.Client
		pubsub      *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalw("Redis connection failed", "error", err)
		}
		defer redisClients.Close()

		storeClient, pubsub = redisClients.Store, redisClients.PubSub
		// The lock must outlive the slowest model call it guards.
		store = session.NewRedisStore(storeClient, cfg.SessionTTL, 2*cfg.GeminiTimeout)
		log.Info("Redis connected, sessions stored in Redis")
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
		log.Info("REDIS_URL not set, sessions kept in memory")
	}

	codec, err := session.NewCookieCodec(cfg.SecretKey, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		log.Fatalw("Session cookie setup failed", "error", err)
	}

	// ──── Step 3: Initialize Upload Storage ────
	uploads, err := storage.NewUploadStore(cfg.UploadDir)
	if err != nil {
		log.Fatalw("Upload directory setup failed", "error", err)
	}
	log.Infow("Upload directory ready", "dir", uploads.Dir())

	// ──── Step 4: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(context.Background(), services.GeminiConfig{
		APIKey:         cfg.GeminiAPIKey,
		ChatModel:      cfg.GeminiChatModel,
		VisionModel:    cfg.GeminiVisionModel,
		ConcurrentReqs: cfg.GeminiConcurrentReqs,
		Timeout:        cfg.GeminiTimeout,
	}, log)
	if err != nil {
		log.Fatalw("Gemini client initialization failed", "error", err)
	}
	defer geminiService.Close()
	if geminiService.Available() {
		log.Infow("Gemini client initialized", "chat_model", cfg.GeminiChatModel, "vision_model", cfg.GeminiVisionModel)
	} else {
		log.Warn("GEMINI_API_KEY is not set; AI endpoints will answer 503")
	}

	// ──── Initialize Services ────
	chatService := services.NewChatService(store, geminiService, log)
	imageService := services.NewImageService(uploads, geminiService, log)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(pubsub, chatService, log)

	// ──── Initialize Handlers ────
	homeHandler := handlers.NewHomeHandler(log)
	chatHandler := handlers.NewChatHandler(chatService, wsHub, log)
	imageHandler := handlers.NewImageHandler(imageService, cfg.MaxUploadBytes, log)

	// ──── Step 6: Start Upload Sweeper ────
	sweeper := worker.NewSweeper(uploads, storeClient, cfg.SweepInterval, cfg.UploadRetention, log)
	sweeper.Start()

	// ──── Step 7: Start HTTP Server ────
	apiLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	r := router.New(
		middleware.NewSessions(codec, log),
		apiLimiter,
		homeHandler,
		chatHandler,
		imageHandler,
		wsHub,
		cfg.FrontendURL,
		cfg.TrustProxy,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		sweeper.Stop()
		apiLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infow("SneakerFit backend ready",
		"url", fmt.Sprintf("http://localhost:%s", cfg.Port),
		"stream", fmt.Sprintf("ws://localhost:%s/api/chat/stream", cfg.Port),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalw("Server error", "error", err)
	}
}
