package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/applicant-intake/internal/dtos"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/models"
	"github.com/justsurfingit/applicant-intake/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CandidateHandler is the recruiter's read side of the candidate store.
type CandidateHandler struct {
	Store services.CandidateRepository
	Jobs  services.JobRepository

	keepAlive time.Duration
}

func NewCandidateHandler(store services.CandidateRepository, jobs services.JobRepository) *CandidateHandler {
	return &CandidateHandler{Store: store, Jobs: jobs, keepAlive: 25 * time.Second}
}

// List returns the candidates of a job, newest first.
// @Summary List candidates of a job
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param jobId path string true "Job ID"
// @Success 200 {array} models.Candidate
// @Failure 401 {object} dtos.ErrorResponse
// @Failure 404 {object} dtos.ErrorResponse
// @Router /orgs/{orgId}/jobs/{jobId}/candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.Jobs.GetJob(ctx, c.Param("orgId"), c.Param("jobId")); err != nil {
		writeLookupError(c, err, "Job not found")
		return
	}

	candidates, err := h.Store.ListByJob(ctx, c.Param("orgId"), c.Param("jobId"))
	if err != nil {
		logger.WithContext(ctx).Error("failed to list candidates", "error", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to load candidates"})
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	c.JSON(http.StatusOK, candidates)
}

// Export streams the job's candidates as an xlsx workbook.
// @Summary Export candidates as xlsx
// @Tags candidates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param jobId path string true "Job ID"
// @Success 200 {file} file
// @Router /orgs/{orgId}/jobs/{jobId}/candidates/export [get]
func (h *CandidateHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	job, err := h.Jobs.GetJob(ctx, c.Param("orgId"), c.Param("jobId"))
	if err != nil {
		writeLookupError(c, err, "Job not found")
		return
	}

	candidates, err := h.Store.ListByJob(ctx, job.OrgID, job.ID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list candidates", "error", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to load candidates"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="candidates-%s.xlsx"`, job.ID))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := services.ExportCandidates(c.Writer, job, candidates); err != nil {
		logger.WithContext(ctx).Error("failed to export candidates", "error", err)
	}
}

// Events lists the audit trail of one candidate.
func (h *CandidateHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	cand, err := h.Store.Get(ctx, c.Param("candidateId"))
	if err != nil || cand.OrgID != c.Param("orgId") {
		if err == nil {
			err = models.ErrNotFound
		}
		writeLookupError(c, err, "Candidate not found")
		return
	}

	events, err := h.Store.ListEvents(ctx, cand.ID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list candidate events", "error", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to load events"})
		return
	}
	if events == nil {
		events = []models.CandidateEvent{}
	}
	c.JSON(http.StatusOK, events)
}

// Stream pushes candidate changes of the organization as server-sent events.
func (h *CandidateHandler) Stream(c *gin.Context) {
	changes, cancel := h.Store.Subscribe(c.Param("orgId"))
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent(change.Type, change.Candidate)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func writeLookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, dtos.ErrorResponse{Error: notFound})
		return
	}
	logger.WithContext(c.Request.Context()).Error("lookup failed", "error", err)
	c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Internal server error"})
}
