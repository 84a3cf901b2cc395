// Package server exposes the dashboard API over HTTP: trend collection,
// trend/expert matching, idea generation, habit analysis, and email delivery.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ideaforge/internal/config"
	"ideaforge/internal/core"
	"ideaforge/internal/email"
	"ideaforge/internal/logger"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/session"
	"ideaforge/internal/trends"
	"ideaforge/internal/youtube"
)

// PaperSearcher is what the papers route needs: per-match enrichment plus a
// raw query passthrough.
type PaperSearcher interface {
	pipeline.PaperSearcher
	Search(ctx context.Context, query string, limit int) ([]core.AcademicPaper, error)
}

// IdeaModel is the slice of the language-model client the routes call.
// *llm.Client satisfies it.
type IdeaModel interface {
	GenerateIdea(ctx context.Context, match core.MatchResult, customPrompt string) (core.VideoIdea, error)
	AnalyzeHabit(ctx context.Context, video core.Video) (core.HabitAnalysis, core.VibeCodingIdea, error)
	SuggestHabits(ctx context.Context) []core.HabitSuggestion
	FilterFamous(ctx context.Context, videos []core.Video) []core.Video
}

// Deps bundles the collaborators the server routes over.
type Deps struct {
	// LLM may be nil when no API key is configured; matching and generation
	// routes then answer 503 while read-only routes degrade to static data.
	LLM IdeaModel

	Pipeline *pipeline.Pipeline
	Papers   PaperSearcher
	Session  *session.Manager
	Trends   []trends.Provider
	YouTube  *youtube.Client
	Mailer   *email.Sender
	Titans   []core.Titan

	// GenerateTimeout bounds a single idea-generation call. Zero means no
	// stage deadline beyond the router timeout.
	GenerateTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     config.Server
	log        *slog.Logger
	deps       Deps
}

// New creates a new HTTP server instance
func New(cfg config.Server, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		log:    logger.Get(),
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.WriteTimeout)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// The matching stage can legitimately take tens of seconds.
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.config.CORSEnabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/trends", s.handleTrends)
		r.Post("/match", s.handleMatch)
		r.Get("/matches", s.handleListMatches)
		r.Post("/matches/restore", s.handleRestoreMatch)

		r.Post("/generate", s.handleGenerate)
		r.Post("/papers", s.handlePapers)

		r.Get("/ideas", s.handleListIdeas)
		r.Delete("/ideas/{id}", s.handleDeleteIdea)
		r.Post("/ideas/{id}/restore", s.handleRestoreIdea)

		r.Get("/youtube", s.handleYouTube)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/suggest", s.handleSuggest)

		r.Post("/email", s.handleEmail)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"gemini_configured", s.deps.LLM != nil,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
