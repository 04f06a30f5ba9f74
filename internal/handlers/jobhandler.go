package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/applicant-intake/internal/dtos"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/models"
	"github.com/justsurfingit/applicant-intake/internal/services"
)

type JobHandler struct {
	LLMService *services.LLMService
	Jobs       services.JobRepository
}

func NewJobHandler(llm *services.LLMService, jobs services.JobRepository) *JobHandler {
	return &JobHandler{
		LLMService: llm,
		Jobs:       jobs,
	}
}

// ListJobs is the public job board of an organization.
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param orgId path string true "Organization ID"
// @Success 200 {array} dtos.JobResponse
// @Router /orgs/{orgId}/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Jobs.ListJobs(c.Request.Context(), c.Param("orgId"))
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("failed to list jobs", "error", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to load jobs"})
		return
	}

	out := make([]dtos.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, services.ToJobResponse(&jobs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetJob serves the job description an applicant reads before applying.
// @Summary Get a job description
// @Tags jobs
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param jobId path string true "Job ID"
// @Success 200 {object} dtos.JobResponse
// @Failure 404 {object} dtos.ErrorResponse
// @Router /orgs/{orgId}/jobs/{jobId} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.ToJobResponse(job))
}

func (h *JobHandler) loadJob(c *gin.Context) (*models.Job, bool) {
	job, err := h.Jobs.GetJob(c.Request.Context(), c.Param("orgId"), c.Param("jobId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, dtos.ErrorResponse{Error: "Job not found"})
			return nil, false
		}
		logger.WithContext(c.Request.Context()).Error("failed to load job", "error", err)
		c.JSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "Failed to load job"})
		return nil, false
	}
	return job, true
}

// ParseJob is the POST /orgs/:orgId/jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	extractedJSON, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Extraction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    extractedJSON,
	})
}

// @Summary Create a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body dtos.JobCreationRequest true "Job"
// @Success 201 {object} dtos.JobResponse
// @Failure 400 {object} dtos.ErrorResponse
// @Router /orgs/{orgId}/jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	job, err := h.Jobs.CreateJob(c.Request.Context(), c.Param("orgId"), &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("failed to create job", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return
	}
	c.JSON(http.StatusCreated, services.ToJobResponse(job))
}
