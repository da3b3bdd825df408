package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/api"
	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/Rrens/pain-mapper/internal/llm/gemini"
	"github.com/Rrens/pain-mapper/internal/llm/ollama"
	"github.com/Rrens/pain-mapper/internal/llm/openai"
	"github.com/Rrens/pain-mapper/internal/repository/redis"
	"github.com/Rrens/pain-mapper/internal/service"
	"github.com/Rrens/pain-mapper/internal/speech"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logFile, err := setupLogger(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting pain mapper API server")

	ctx := context.Background()

	// Initialize database
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.close()

	// Landmark catalog
	catalog, err := anatomy.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load landmark catalog")
	}
	log.Info().Int("landmarks", catalog.Len()).Msg("Landmark catalog loaded")

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	var locker service.SessionLocker = service.NewLocalLocker()
	if cfg.Locking.Backend == config.LockBackendRedis {
		locker = redis.NewSessionLock(redisClient, cfg.Locking.TTL)
	}
	log.Info().Str("backend", cfg.Locking.Backend).Msg("Session locking configured")

	llmRouter := newLLMRouter(cfg.LLM)

	transcriber, err := speech.New(cfg.Speech)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure speech-to-text")
	}

	// Initialize services
	suggestionService := service.NewSuggestionService(
		db.sessions, db.painPoints, db.history, db.suggestions, db.tx,
		llmRouter, locker,
		service.SuggestionOptions{Provider: cfg.Suggestions.Provider, Model: cfg.Suggestions.Model},
	)
	reconciler := service.NewReconciler(
		db.sessions, db.painPoints, db.history, db.tx,
		llmRouter, catalog, suggestionService, locker,
		service.ReconcilerOptions{
			AsyncSuggestions:  cfg.Suggestions.Async,
			SuggestionTimeout: cfg.Suggestions.Timeout,
		},
	)

	deps := api.Dependencies{
		DB:            db,
		Catalog:       catalog,
		LLMRouter:     llmRouter,
		Sessions:      service.NewSessionService(db.sessions, db.painPoints, db.history, db.suggestions, db.tx, locker),
		Reconciler:    reconciler,
		Suggestions:   suggestionService,
		Transcription: service.NewTranscriptionService(transcriber),
	}
	if redisClient != nil {
		deps.RateLimiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight suggestion refreshes finish before the store closes
	reconciler.Wait()

	log.Info().Msg("Server stopped")
}

func newLLMRouter(cfg config.LLMConfig) *llm.Router {
	llmRouter := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Gemini.APIKey != "" {
		log.Info().Int("key_len", len(cfg.Gemini.APIKey)).Msg("Registering Gemini provider")
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Warn().Msg("Gemini API Key is empty, skipping registration")
	}
	if cfg.OpenAI.APIKey != "" {
		log.Info().Str("base_url", cfg.OpenAI.BaseURL).Msg("Registering OpenAI-compatible provider")
		llmRouter.RegisterProvider(openai.NewProvider(cfg.OpenAI, cfg.Timeout))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama, cfg.Timeout))
	}

	return llmRouter
}
