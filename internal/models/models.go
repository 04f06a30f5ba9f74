package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	StageNew = "New"

	JobStatusOpen   = "OPEN"
	JobStatusClosed = "CLOSED"
)

// Availability values accepted on an application.
const (
	AvailabilityImmediate      = "Immediate"
	AvailabilityTwoWeeks       = "2-Weeks-Notice"
	AvailabilityOneMonth       = "1-Month-Notice"
	AvailabilityViewingOptions = "Viewing-Options"
)

// Source values accepted on an application.
const (
	SourceLinkedIn       = "LinkedIn"
	SourceReferral       = "Referral"
	SourceCompanyWebsite = "Company-Website"
	SourceOther          = "Other"
)

// Candidate event types.
const (
	EventCreated        = "CREATED"
	EventScreened       = "SCREENED"
	EventScreeningError = "SCREENING_FAILED"
	EventManualInput    = "MANUAL_INPUT"
	EventAssetsAttached = "ASSETS_ATTACHED"
	EventNotified       = "NOTIFIED"
)

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrgID string `gorm:"uniqueIndex:idx_company_org_name;not null" json:"org_id"`
	Name  string `gorm:"uniqueIndex:idx_company_org_name;not null" json:"company_name"`

	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrgID     string  `gorm:"index;not null" json:"org_id"`
	CompanyID uint    `json:"company_id"`
	Company   Company `json:"company"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`
	JobLink     string `json:"job_link"`
	Status      string `gorm:"default:'OPEN'" json:"status"`
}

func (j *Job) IsOpen() bool {
	return j.Status == "" || j.Status == JobStatusOpen
}

type CandidateMetrics struct {
	// IntroVideoDuration is whole seconds of recorded pitch, 0-10.
	IntroVideoDuration int `json:"introVideoDuration" validate:"gte=0,lte=10"`
}

// Candidate is the durable record of one application.
type Candidate struct {
	ID        string    `gorm:"primaryKey" json:"id" validate:"required"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`

	OrgID string `gorm:"uniqueIndex:idx_candidate_org_job_email;not null" json:"orgId" validate:"required"`
	JobID string `gorm:"uniqueIndex:idx_candidate_org_job_email;not null" json:"jobId" validate:"required"`
	Email string `gorm:"uniqueIndex:idx_candidate_org_job_email;not null" json:"email" validate:"required,email"`

	Name         string `gorm:"not null" json:"name" validate:"required"`
	Role         string `json:"role"`
	Stage        string `gorm:"index;not null" json:"stage" validate:"required"`
	AppliedAt    string `json:"appliedAt" validate:"required"`
	Availability string `json:"availability" validate:"omitempty,oneof=Immediate 2-Weeks-Notice 1-Month-Notice Viewing-Options"`
	Source       string `json:"source" validate:"omitempty,oneof=LinkedIn Referral Company-Website Other"`

	Metrics CandidateMetrics `gorm:"embedded;embeddedPrefix:metrics_" json:"metrics"`

	ResumeURL    string `json:"resumeUrl"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`

	ResumeText  string `gorm:"type:text" json:"resumeText,omitempty"`
	ManualInput bool   `json:"manualInput,omitempty"`

	ScreeningScore   *float64 `json:"screeningScore,omitempty"`
	ScreeningSummary string   `gorm:"type:text" json:"screeningSummary,omitempty"`
}

// CandidateEvent is an append-only audit line for a candidate record.
type CandidateEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	CandidateID string    `gorm:"index" json:"candidate_id"`
	EventType   string    `json:"event_type"`
	Details     string    `gorm:"type:text" json:"details"`
}

// Patch is a partial update of a candidate record keyed by json field name.
type Patch map[string]any

// MutableFields lists the candidate fields a Patch may touch.
var MutableFields = map[string]bool{
	"stage":            true,
	"resumeUrl":        true,
	"videoUrl":         true,
	"thumbnailUrl":     true,
	"resumeText":       true,
	"manualInput":      true,
	"screeningScore":   true,
	"screeningSummary": true,
}

// Columns maps json field names to database columns.
var Columns = map[string]string{
	"email":            "email",
	"jobId":            "job_id",
	"stage":            "stage",
	"resumeUrl":        "resume_url",
	"videoUrl":         "video_url",
	"thumbnailUrl":     "thumbnail_url",
	"resumeText":       "resume_text",
	"manualInput":      "manual_input",
	"screeningScore":   "screening_score",
	"screeningSummary": "screening_summary",
}

var validate = validator.New()

// Validate checks the record shape before it reaches a store.
func (c *Candidate) Validate() error {
	return validate.Struct(c)
}

// Store errors shared by every candidate and job store.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("record already exists")
)
