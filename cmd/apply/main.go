package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justsurfingit/applicant-intake/internal/app"
	"github.com/justsurfingit/applicant-intake/internal/capture"
	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/submission"
	"github.com/justsurfingit/applicant-intake/internal/tui"
)

func main() {
	org := flag.String("org", "", "organization id")
	job := flag.String("job", "", "job id")
	first := flag.String("first", "", "first name")
	last := flag.String("last", "", "last name")
	email := flag.String("email", "", "email address")
	availability := flag.String("availability", "", "Immediate, 2-Weeks-Notice, 1-Month-Notice or Viewing-Options")
	source := flag.String("source", "", "LinkedIn, Referral, Company-Website or Other")
	resume := flag.String("resume", "", "path to the resume file")
	video := flag.Bool("video", false, "record an intro clip with the camera")
	device := flag.String("device", "/dev/video0", "video capture device")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	// The screen owns stdout; logs go to stderr at warn and above.
	logger.InitWriter(&logger.Config{Level: "warn", Format: cfg.Log.Format}, os.Stderr)

	if *org == "" || *job == "" || *resume == "" {
		fmt.Fprintln(os.Stderr, "usage: apply -org ID -job ID -first NAME -last NAME -email ADDR -resume FILE [-video]")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	draft := &submission.Draft{
		FirstName:    *first,
		LastName:     *last,
		Email:        *email,
		Availability: *availability,
		Source:       *source,
	}
	if draft.Resume, err = readResume(*resume); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg, *org, *job, draft, *video, *device); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, orgID, jobID string, draft *submission.Draft, withVideo bool, device string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates := make(chan submission.Snapshot, 32)
	a, err := app.Build(ctx, cfg, submission.WithObserver(tui.Observer(updates)))
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.Jobs.GetJob(ctx, orgID, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if !job.IsOpen() {
		return errors.New("this job is no longer accepting applications")
	}

	var rec tui.Recorder
	if withVideo {
		if err := capture.CheckDependencies(); err != nil {
			return err
		}
		session := capture.NewSession(capture.NewFFmpegDevice(device),
			capture.WithThumbnailer(capture.NewThumbnailer(capture.NewFFmpegFrames())),
			capture.WithLogger(slog.Default()),
		)
		defer session.Close()
		rec = session
	}

	sub := a.Workflow.Open(*job)
	defer sub.Close()

	p := tea.NewProgram(tui.NewModel(ctx, sub, draft, rec, updates), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Workflow.Shutdown(shutdownCtx); err != nil {
		slog.Warn("application receipt still pending at exit", "error", err)
	}

	if m, ok := final.(tui.Model); ok && m.Failed() && m.Err() != "" {
		return errors.New(m.Err())
	}
	return nil
}

func readResume(path string) (*submission.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &submission.Asset{
		Data:     data,
		Filename: filepath.Base(path),
		MimeType: mimeType,
	}, nil
}
