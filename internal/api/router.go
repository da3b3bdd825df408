package api

import (
	"net/http"

	"github.com/Rrens/pain-mapper/internal/anatomy"
	"github.com/Rrens/pain-mapper/internal/api/handler"
	customMiddleware "github.com/Rrens/pain-mapper/internal/api/middleware"
	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/Rrens/pain-mapper/internal/llm"
	"github.com/Rrens/pain-mapper/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Dependencies are the wired services the router exposes
type Dependencies struct {
	DB            handler.Pinger
	Catalog       *anatomy.Catalog
	LLMRouter     *llm.Router
	Sessions      *service.SessionService
	Reconciler    *service.Reconciler
	Suggestions   *service.SuggestionService
	Transcription *service.TranscriptionService
	// RateLimiter is optional; model-backed routes are unlimited without it
	RateLimiter customMiddleware.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	messageHandler := handler.NewMessageHandler(deps.Reconciler)
	suggestionHandler := handler.NewSuggestionHandler(deps.Suggestions)
	speechHandler := handler.NewSpeechHandler(deps.Transcription)

	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.DB))

		r.Get("/landmarks", handler.ListLandmarks(deps.Catalog))
		r.Get("/llm-providers", handler.ListLLMProviders(deps.LLMRouter))

		r.With(limit).Post("/speech/transcribe", speechHandler.Transcribe)

		// Session routes
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Post("/", sessionHandler.Create)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(customMiddleware.SessionContext)

				r.Get("/", sessionHandler.Get)
				r.Get("/full", sessionHandler.GetFull)

				r.With(limit).Post("/messages", messageHandler.Process)

				r.Get("/history", sessionHandler.ListHistory)
				r.Post("/history", sessionHandler.CreateHistory)

				r.Post("/pain-points", sessionHandler.AddPainPoint)
				r.Patch("/pain-points/{painPointID}", sessionHandler.UpdatePainPoint)
				r.Delete("/pain-points/{painPointID}", sessionHandler.DeletePainPoint)

				r.Get("/suggestions", suggestionHandler.List)
				r.With(limit).Post("/suggestions/generate", suggestionHandler.Generate)
			})
		})
	})

	return r
}
