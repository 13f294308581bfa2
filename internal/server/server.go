// Package server is the composition root: it opens the database, wires
// repositories into services and services into handlers, mounts the routes
// and owns startup and graceful shutdown, including the background task
// poller.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/alternagen/api/internal/auth"
	"github.com/alternagen/api/internal/generator"
	"github.com/alternagen/api/internal/handler"
	"github.com/alternagen/api/internal/middleware"
	"github.com/alternagen/api/internal/payment"
	sqliteRepo "github.com/alternagen/api/internal/repository/sqlite"
	"github.com/alternagen/api/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port   int
	DBPath string

	JWTSecret             string
	IdentityWebhookSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	FrontendURL         string

	GeminiAPIKey string
	GeminiModel  string

	PollInterval time.Duration
}

// Server owns the router, the database connection and the task poller.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	poller *service.Poller
}

// New assembles the full dependency chain. Handlers only see services,
// services only see repository interfaces, and the single sqlite.DB value
// implements every repository.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Services. The db value satisfies every repository interface.
	users := service.NewUserService(s.db, s.logger)
	profiles := service.NewProfileService(s.db, s.logger)
	jobs := service.NewJobService(s.db, s.logger)
	applications := service.NewApplicationService(s.db, s.db, s.logger)
	matches := service.NewMatchService(s.db, s.db, s.db, s.logger)
	agent := service.NewAgentService(s.db, s.db, s.db, s.db, matches, s.logger)
	s.poller = service.NewPoller(agent, s.config.PollInterval, s.logger)

	gemini, err := generatorClient(ctx, s.config)
	if err != nil {
		return err
	}
	generations := service.NewGenerationService(s.db, s.db, gemini, s.logger)

	stripeClient := payment.NewClient(s.config.StripeSecretKey,
		s.config.StripeWebhookSecret, s.config.StripePriceID)
	billing := service.NewBillingService(stripeClient, s.db, s.db, s.db, s.db,
		s.config.FrontendURL, s.logger)

	// Auth.
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("configuring token validation: %w", err)
	}
	identityVerifier, err := auth.NewWebhookVerifier(s.config.IdentityWebhookSecret)
	if err != nil {
		return fmt.Errorf("configuring identity webhook verification: %w", err)
	}

	// Handlers.
	userHandler := handler.NewUserHandler(users, s.logger)
	profileHandler := handler.NewProfileHandler(profiles, s.logger)
	jobHandler := handler.NewJobHandler(jobs, s.logger)
	applicationHandler := handler.NewApplicationHandler(applications, s.logger)
	matchHandler := handler.NewMatchHandler(matches, s.logger)
	aiHandler := handler.NewAIHandler(generations, s.logger)
	agentHandler := handler.NewAgentHandler(agent, s.logger)
	billingHandler := handler.NewBillingHandler(billing, s.logger)
	webhookHandler := handler.NewWebhookHandler(identityVerifier, stripeClient, users, billing, s.logger)

	s.router.Get("/health", handler.HandleHealth)

	// Webhooks authenticate by signature, not bearer token.
	s.router.Post("/api/webhooks/identity", webhookHandler.HandleIdentity)
	s.router.Post("/api/webhooks/stripe", webhookHandler.HandleStripe)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, users))

		r.Get("/users/me", userHandler.HandleMe)
		r.Patch("/users/me", userHandler.HandleUpdateMe)

		r.Get("/profiles/me", profileHandler.HandleGet)
		r.Post("/profiles/me", profileHandler.HandleCreate)
		r.Patch("/profiles/me", profileHandler.HandleUpdate)

		r.Get("/jobs", jobHandler.HandleList)
		r.Get("/jobs/{id}", jobHandler.HandleGet)
		r.Post("/jobs", jobHandler.HandleCreate)
		r.Delete("/jobs/{id}", jobHandler.HandleDelete)

		r.Get("/applications", applicationHandler.HandleList)
		r.Post("/applications", applicationHandler.HandleCreate)
		r.Patch("/applications/{id}", applicationHandler.HandleUpdate)
		r.Delete("/applications/{id}", applicationHandler.HandleDelete)

		r.Post("/match/calculate", matchHandler.HandleCalculate)
		r.Get("/match/scores", matchHandler.HandleScores)

		r.Post("/ai/cv", aiHandler.HandleGenerateCV)
		r.Post("/ai/cover-letter", aiHandler.HandleGenerateCoverLetter)
		r.Get("/ai/credits", aiHandler.HandleCredits)
		r.Get("/ai/history", aiHandler.HandleHistory)

		r.Get("/agent/brief", agentHandler.HandleBrief)
		r.Get("/agent/offers/recommended", agentHandler.HandleRecommendedOffers)
		r.Post("/agent/run", agentHandler.HandleRun)

		r.Post("/billing/checkout", billingHandler.HandleCheckout)
		r.Get("/billing/subscription", billingHandler.HandleSubscription)
	})

	return nil
}

func generatorClient(ctx context.Context, cfg Config) (service.TextGenerator, error) {
	gemini, err := generator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("configuring generation client: %w", err)
	}
	return gemini, nil
}

// Start runs the HTTP server and the task poller until a shutdown signal
// arrives, then drains in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The poller stops when this context is cancelled.
	pollCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	go s.poller.Run(pollCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		stopPoller()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
