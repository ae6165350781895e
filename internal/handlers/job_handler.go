package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/services"
)

// JobHandler serves the job tracker. LLMService may be nil, extraction
// then answers 503.
type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
	Log        *slog.Logger
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(llm *services.LLMService, j *services.JobService, log *slog.Logger) *JobHandler {
	return &JobHandler{LLMService: llm, JobService: j, Log: log}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	if h.LLMService == nil {
		unavailable(c, "job extraction")
		return
	}
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		h.Log.Error("AI extraction failed", "url", req.URL, "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "AI extraction failed"})
		return
	}
	job.JobLink = req.URL
	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// CreateJob is POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// ListJobs is GET /jobs?status=
func (h *JobHandler) ListJobs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobs, err := h.JobService.ListJobs(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// UpdateStatus is PATCH /jobs/:id/status
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.JobStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.JobService.UpdateStatus(c.Request.Context(), userID, jobID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Events is GET /jobs/:id/events
func (h *JobHandler) Events(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	events, err := h.JobService.Events(c.Request.Context(), userID, jobID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
