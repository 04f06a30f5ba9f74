// Package app wires configuration into the stores, asset storage, LLM and
// submission workflow shared by the API server and the terminal client.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/justsurfingit/applicant-intake/internal/auth"
	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/justsurfingit/applicant-intake/internal/database"
	"github.com/justsurfingit/applicant-intake/internal/services"
	"github.com/justsurfingit/applicant-intake/internal/submission"
	"gorm.io/gorm"
)

type App struct {
	Candidates services.CandidateRepository
	Jobs       services.JobRepository
	Assets     *services.AssetService
	LLM        services.LLM
	Workflow   *submission.Workflow

	closers []func() error
}

// Build connects every dependency named in cfg. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, extra ...submission.Option) (*App, error) {
	a := &App{}
	if err := a.build(ctx, cfg, extra); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config, extra []submission.Option) error {
	hub := services.NewHub()
	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		if err := a.useDB(ctx, cfg, db, hub); err != nil {
			return err
		}
	default:
		slog.Warn("using in-memory store; data is lost on restart")
		a.Candidates = services.NewMemoryStore(hub)
		a.Jobs = services.NewMemoryJobStore()
	}

	assets, err := services.NewAssetService(cfg.Minio)
	if err != nil {
		return err
	}
	if err := assets.EnsureBucket(ctx); err != nil {
		return err
	}
	a.Assets = assets

	llm, err := services.NewLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if v, ok := llm.(*services.VertexLLM); ok {
		a.closers = append(a.closers, v.Close)
	}
	if llm == nil {
		slog.Warn("no LLM provider configured; every screening will fall back to manual input")
	}
	a.LLM = llm

	opts := []submission.Option{submission.WithEvents(a.Candidates)}
	gmailSvc, err := auth.NewGmailService(ctx, cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath)
	if err != nil {
		slog.Warn("gmail not available; application receipts disabled", "error", err)
	} else {
		slog.Info("gmail service connected")
		opts = append(opts, submission.WithNotifier(services.NewNotificationService(gmailSvc, cfg.Gmail.From)))
	}
	opts = append(opts, extra...)

	orchestrator := submission.NewOrchestrator(services.NewScreeningService(llm),
		submission.WithScreeningTimeout(cfg.Intake.ScreeningTimeout),
		submission.WithPulseInterval(cfg.Intake.ScreeningPulse),
	)
	a.Workflow = submission.NewWorkflow(a.Candidates, assets, orchestrator, opts...)
	return nil
}

func (a *App) useDB(ctx context.Context, cfg *config.Config, db *gorm.DB, hub *services.Hub) error {
	var pub services.ChangePublisher
	if cfg.ChangeFanout == "postgres" {
		fanout, err := services.NewPGFanout(cfg.DatabaseURL, db, hub)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, fanout.Close)
		go fanout.Run(ctx)
		pub = fanout
		slog.Info("candidate changes fan out through postgres")
	}
	a.Candidates = services.NewCandidateService(db, hub, pub)
	a.Jobs = services.NewJobService(db)
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
