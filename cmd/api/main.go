package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/config"
	"github.com/justsurfingit/hirepath/internal/database"
	"github.com/justsurfingit/hirepath/internal/handlers"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/justsurfingit/hirepath/internal/pricing"
	"github.com/justsurfingit/hirepath/internal/rbac"
	"github.com/justsurfingit/hirepath/internal/services"
	"github.com/justsurfingit/hirepath/internal/storage"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required to run the API")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database Connection
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// 3. Optional integrations
	var llm *services.LLMService
	if cfg.LLMEnabled() {
		if llm, err = services.NewLLMService(ctx, cfg.LLM); err != nil {
			return err
		}
	} else {
		log.Warn("GEMINI_API_KEY is empty, AI features are disabled")
	}

	var store storage.ObjectStore
	if cfg.StorageEnabled() {
		if store, err = storage.NewS3Store(ctx, cfg.Storage, log); err != nil {
			return err
		}
	} else {
		log.Warn("S3_BUCKET is empty, CV uploads are disabled")
	}

	var billing *pricing.Billing
	if cfg.StripeEnabled() {
		gateway := pricing.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
		billing = pricing.NewBilling(db, gateway, log, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	} else {
		log.Warn("STRIPE_SECRET_KEY is empty, billing is disabled")
	}

	// 4. Core services
	tokens := rbac.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	access := services.NewAccessService(db)
	docs := services.NewDocumentService(db, store, access, log)

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Dependencies{
		DB:           db,
		Guard:        rbac.NewGuard(tokens, access, log),
		Auth:         services.NewAuthService(db, tokens, log),
		Candidates:   services.NewCandidateService(db),
		Roles:        services.NewRoleService(db),
		Packs:        services.NewPackService(db),
		Onboarding:   services.NewOnboardingService(db),
		Jobs:         services.NewJobService(db, access),
		CoverLetters: services.NewCoverLetterService(db, llm, docs, access),
		Documents:    docs,
		LLM:          llm,
		Billing:      billing,
		CORSOrigins:  cfg.CORSOrigins,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
