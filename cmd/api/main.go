package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/applicant-intake/internal/app"
	"github.com/justsurfingit/applicant-intake/internal/auth"
	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/justsurfingit/applicant-intake/internal/handlers"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/services"
)

// @title Applicant Intake API
// @version 1.0
// @description Job board, application submission with resume screening and the recruiter candidate pipeline.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	authorizeGmail := flag.Bool("authorize-gmail", false, "run the Gmail consent flow, save the token and exit")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if *authorizeGmail {
		if _, err := auth.GetGmailClient(context.Background(), cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath, os.Stdin, os.Stdout); err != nil {
			slog.Error("gmail authorization failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("Gmail token saved to", cfg.Gmail.TokenPath)
		return
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Stores, assets, LLM, Gmail and the workflow
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	wf := a.Workflow

	pending := services.NewPendingSubmissions(cfg.Intake.PendingTTL)
	pending.Start(time.Minute)
	defer pending.Stop()

	// 3. Router
	gin.SetMode(gin.ReleaseMode)
	router := &handlers.Router{
		Auth:         &cfg.Auth,
		RateLimit:    cfg.Intake.RateLimit,
		Jobs:         handlers.NewJobHandler(services.NewLLMService(a.LLM), a.Jobs),
		Applications: handlers.NewApplicationHandler(a.Jobs, wf, pending),
		Candidates:   handlers.NewCandidateHandler(a.Candidates, a.Jobs),
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "llm", cfg.LLM.Provider)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := wf.Shutdown(shutdownCtx); err != nil {
		slog.Warn("pending notifications abandoned", "error", err)
	}
	return nil
}
