package dtos

import (
	"time"

	"github.com/justsurfingit/applicant-intake/internal/submission"
)

// ApplicationForm is the multipart apply form. Files are read separately.
type ApplicationForm struct {
	FirstName    string `form:"first_name"`
	LastName     string `form:"last_name"`
	Email        string `form:"email"`
	Availability string `form:"availability"`
	Source       string `form:"source"`
	// TimeLeft is the countdown remaining when the intro video was stopped.
	TimeLeft int `form:"time_left" binding:"gte=0,lte=10"`
}

type RecoverRequest struct {
	Email        string `json:"email" binding:"required"`
	ResumeText   string `json:"resume_text"`
	SubmissionID string `json:"submission_id"`
}

type ApplicationResponse struct {
	Status      string               `json:"status"`
	Message     string               `json:"message,omitempty"`
	CandidateID string               `json:"candidate_id,omitempty"`
	Submission  *submission.Snapshot `json:"submission,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type TokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	OrgID     string    `json:"org_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
