package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/applicant-intake/internal/capture"
	"github.com/justsurfingit/applicant-intake/internal/dtos"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/services"
	"github.com/justsurfingit/applicant-intake/internal/submission"
)

const defaultMaxUploadBytes = 64 << 20

// ApplicationHandler runs the submission workflow for browser clients.
type ApplicationHandler struct {
	Jobs     services.JobRepository
	Workflow *submission.Workflow
	Pending  *services.PendingSubmissions

	maxUploadBytes int64
}

func NewApplicationHandler(jobs services.JobRepository, wf *submission.Workflow, pending *services.PendingSubmissions) *ApplicationHandler {
	return &ApplicationHandler{
		Jobs:           jobs,
		Workflow:       wf,
		Pending:        pending,
		maxUploadBytes: defaultMaxUploadBytes,
	}
}

// Submit is POST /orgs/:orgId/jobs/:jobId/applications.
// @Summary Submit an application
// @Description Creates the candidate, uploads the resume and intro video and screens the resume. A 202 means screening failed and the applicant must paste resume text.
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param jobId path string true "Job ID"
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param email formData string true "Email"
// @Param availability formData string false "Immediate, 2-Weeks-Notice, 1-Month-Notice or Viewing-Options"
// @Param source formData string false "LinkedIn, Referral, Company-Website or Other"
// @Param time_left formData int false "Countdown seconds left when the video was stopped"
// @Param resume formData file true "Resume"
// @Param video formData file false "Intro video"
// @Param thumbnail formData file false "Video thumbnail (JPEG)"
// @Success 201 {object} dtos.ApplicationResponse
// @Success 202 {object} dtos.ApplicationResponse
// @Failure 400 {object} dtos.ErrorResponse
// @Failure 404 {object} dtos.ErrorResponse
// @Failure 409 {object} dtos.ErrorResponse
// @Failure 429 {object} dtos.ErrorResponse
// @Router /orgs/{orgId}/jobs/{jobId}/applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	ctx := logger.WithOrg(c.Request.Context(), c.Param("orgId"))
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	job, err := h.Jobs.GetJob(ctx, c.Param("orgId"), c.Param("jobId"))
	if err != nil {
		writeLookupError(c, err, "Job not found")
		return
	}
	if !job.IsOpen() {
		c.JSON(http.StatusConflict, dtos.ErrorResponse{Error: "This job is no longer accepting applications"})
		return
	}

	var form dtos.ApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid application form: " + err.Error()})
		return
	}

	draft, err := draftFromRequest(c, &form)
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: err.Error()})
		return
	}

	sub := h.Workflow.Open(*job)
	if err := sub.Proceed(); err != nil {
		h.fail(c, err)
		return
	}

	err = sub.Submit(ctx, draft)
	snap := sub.Snapshot()
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, dtos.ApplicationResponse{
			Status:      "success",
			CandidateID: snap.CandidateID,
			Submission:  &snap,
		})
	case errors.Is(err, submission.ErrScreeningFailed):
		h.Pending.Put(sub)
		c.JSON(http.StatusAccepted, dtos.ApplicationResponse{
			Status:      snap.State,
			Message:     snap.Error,
			CandidateID: snap.CandidateID,
			Submission:  &snap,
		})
	default:
		sub.Close()
		h.fail(c, err)
	}
}

// Recover is POST /orgs/:orgId/jobs/:jobId/applications/recover. It continues
// the pending submission when it is still registered and otherwise patches
// the stored record directly.
// @Summary Finish an application with pasted resume text
// @Tags applications
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param jobId path string true "Job ID"
// @Param request body dtos.RecoverRequest true "Pasted resume text"
// @Success 200 {object} dtos.ApplicationResponse
// @Failure 400 {object} dtos.ErrorResponse
// @Failure 404 {object} dtos.ErrorResponse
// @Failure 409 {object} dtos.ErrorResponse
// @Router /orgs/{orgId}/jobs/{jobId}/applications/recover [post]
func (h *ApplicationHandler) Recover(c *gin.Context) {
	ctx := logger.WithOrg(c.Request.Context(), c.Param("orgId"))

	var req dtos.RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: "Invalid JSON format: " + err.Error()})
		return
	}

	if sub, ok := h.lookup(c, req.SubmissionID); ok {
		if err := sub.RecoverManually(ctx, req.ResumeText); err != nil {
			h.fail(c, err)
			return
		}
		snap := sub.Snapshot()
		h.Pending.Remove(sub.ID)
		c.JSON(http.StatusOK, dtos.ApplicationResponse{
			Status:      "success",
			CandidateID: snap.CandidateID,
			Submission:  &snap,
		})
		return
	}

	rec, err := h.Workflow.RecoverStateless(ctx, c.Param("orgId"), c.Param("jobId"), req.Email, req.ResumeText)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ApplicationResponse{Status: "success", CandidateID: rec.ID})
}

// Status is GET /orgs/:orgId/jobs/:jobId/applications/:submissionId.
// @Summary Poll a pending submission
// @Tags applications
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param jobId path string true "Job ID"
// @Param submissionId path string true "Submission ID"
// @Success 200 {object} submission.Snapshot
// @Failure 404 {object} dtos.ErrorResponse
// @Router /orgs/{orgId}/jobs/{jobId}/applications/{submissionId} [get]
func (h *ApplicationHandler) Status(c *gin.Context) {
	sub, ok := h.lookup(c, c.Param("submissionId"))
	if !ok {
		c.JSON(http.StatusNotFound, dtos.ErrorResponse{Error: "Submission not found or expired"})
		return
	}
	c.JSON(http.StatusOK, sub.Snapshot())
}

func (h *ApplicationHandler) lookup(c *gin.Context, id string) (*submission.Submission, bool) {
	if id == "" {
		return nil, false
	}
	sub, ok := h.Pending.Get(id)
	if !ok {
		return nil, false
	}
	job := sub.Job()
	if job.OrgID != c.Param("orgId") || job.ID != c.Param("jobId") {
		return nil, false
	}
	return sub, true
}

func (h *ApplicationHandler) fail(c *gin.Context, err error) {
	var ve *submission.ValidationError
	switch {
	case errors.Is(err, submission.ErrDuplicateApplication):
		c.JSON(http.StatusConflict, dtos.ErrorResponse{Error: submission.ErrDuplicateApplication.Message, Field: "email"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dtos.ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, submission.ErrRecordMissing):
		c.JSON(http.StatusNotFound, dtos.ErrorResponse{Error: err.Error()})
	case errors.Is(err, submission.ErrInProgress),
		errors.Is(err, submission.ErrNotAwaitingRecovery),
		errors.Is(err, submission.ErrWrongStep):
		c.JSON(http.StatusConflict, dtos.ErrorResponse{Error: err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error("application request failed", "error", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: submission.GenericErrorMessage})
	}
}

func draftFromRequest(c *gin.Context, form *dtos.ApplicationForm) (*submission.Draft, error) {
	d := &submission.Draft{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Availability: form.Availability,
		Source:       form.Source,
	}

	if fh, err := c.FormFile("resume"); err == nil {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("could not read resume: %w", err)
		}
		d.Resume = &submission.Asset{
			Data:     data,
			Filename: fh.Filename,
			MimeType: partType(fh, "application/octet-stream"),
		}
	}

	if fh, err := c.FormFile("video"); err == nil {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("could not read video: %w", err)
		}
		d.Video = &capture.Clip{
			Data:     data,
			MimeType: partType(fh, "video/webm"),
			TimeLeft: form.TimeLeft,
		}
	}

	if fh, err := c.FormFile("thumbnail"); err == nil {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("could not read thumbnail: %w", err)
		}
		d.Thumbnail = data
	}
	return d, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func partType(fh *multipart.FileHeader, fallback string) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return fallback
}
