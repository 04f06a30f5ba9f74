// Package submission turns an applicant's draft into a durable candidate
// record: duplicate check, record pre-creation, resume upload, screening,
// media upload and finalization, in that order.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/justsurfingit/applicant-intake/internal/capture"
	"github.com/justsurfingit/applicant-intake/internal/models"
)

// CandidateStore is the durable candidate collection.
type CandidateStore interface {
	CreateRecord(ctx context.Context, c *models.Candidate) (string, error)
	QueryByField(ctx context.Context, orgID, field, value string) ([]models.Candidate, error)
	PatchRecord(ctx context.Context, id string, patch models.Patch) error
	Get(ctx context.Context, id string) (*models.Candidate, error)
}

// AssetStore persists binary assets and returns a public URL for each.
type AssetStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	UploadWithProgress(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress func(pct float64)) (string, error)
}

type ScreenRequest struct {
	ResumeURL      string
	ResumeText     string
	JobTitle       string
	JobDescription string
}

// ScreenResult is a screening verdict. A nil Score means the screening failed,
// not that the candidate scored low.
type ScreenResult struct {
	Score   *float64 `json:"score"`
	Summary string   `json:"summary"`
}

type Screener interface {
	Screen(ctx context.Context, req ScreenRequest) (*ScreenResult, error)
}

type Notifier interface {
	SendApplicationReceipt(ctx context.Context, email, jobTitle, candidateName string) error
}

// EventRecorder appends audit lines for a candidate. Failures are never fatal.
type EventRecorder interface {
	RecordEvent(ctx context.Context, candidateID, eventType, details string) error
}

// Asset is an uploaded file held in memory.
type Asset struct {
	Data     []byte
	Filename string
	MimeType string
}

// Draft is everything an applicant supplies before submitting.
type Draft struct {
	FirstName    string `validate:"required"`
	LastName     string `validate:"required"`
	Email        string `validate:"required,email"`
	Availability string `validate:"omitempty,oneof=Immediate 2-Weeks-Notice 1-Month-Notice Viewing-Options"`
	Source       string `validate:"omitempty,oneof=LinkedIn Referral Company-Website Other"`

	Resume *Asset `validate:"required"`

	// Video is optional; its Thumbnail is used when Thumbnail is empty.
	Video     *capture.Clip
	Thumbnail []byte
}

// IntroVideoDuration is 10 minus the countdown left at stop, clamped to [0, 10].
func (d *Draft) IntroVideoDuration() int {
	if d.Video == nil {
		return 0
	}
	return capture.DurationFromTimeLeft(d.Video.TimeLeft)
}

func (d *Draft) thumbnail() []byte {
	if len(d.Thumbnail) > 0 {
		return d.Thumbnail
	}
	if d.Video != nil {
		return d.Video.Thumbnail
	}
	return nil
}

func (d *Draft) hasVideo() bool {
	return d.Video != nil && len(d.Video.Data) > 0
}

// ValidationError is recovered locally: the applicant stays on the current step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var ErrDuplicateApplication = &ValidationError{
	Field:   "email",
	Message: "you have already applied to this job with this email",
}

var (
	ErrScreeningFailed     = errors.New("resume screening failed")
	ErrAssetUpload         = errors.New("asset upload failed")
	ErrInProgress          = errors.New("submission already in progress")
	ErrWrongStep           = errors.New("submission is not at the expected step")
	ErrNotAwaitingRecovery = errors.New("submission is not awaiting manual recovery")
	ErrSubmissionClosed    = errors.New("submission closed")
	ErrRecordMissing       = errors.New("candidate record for this application not found")
)

// GenericErrorMessage is shown for any failure that is not a validation error.
const GenericErrorMessage = "Something went wrong while submitting your application. Please try again."
