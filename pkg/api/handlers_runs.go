package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"armada/pkg/logsink"
	"armada/pkg/models"
)

// --- Request/Response DTOs ---

// CreateRunRequest is the payload for submitting a command run.
type CreateRunRequest struct {
	Service        string            `json:"service" binding:"required"`
	Command        string            `json:"command" binding:"required"`
	Component      string            `json:"component"`
	Level          string            `json:"level"`
	Cluster        string            `json:"cluster"`
	Instance       string            `json:"instance"`
	Env            map[string]string `json:"env"`
	TimeoutSeconds int               `json:"timeout_seconds"`
}

// RunResponse is the API representation of a run.
type RunResponse struct {
	ID             uuid.UUID        `json:"id"`
	Service        string           `json:"service"`
	Command        string           `json:"command"`
	Component      string           `json:"component,omitempty"`
	Level          string           `json:"level,omitempty"`
	Cluster        string           `json:"cluster,omitempty"`
	Instance       string           `json:"instance,omitempty"`
	TimeoutSeconds int              `json:"timeout_seconds"`
	Status         models.RunStatus `json:"status"`
	ExitCode       int              `json:"exit_code"`
	TimedOut       bool             `json:"timed_out"`
	OutputURI      string           `json:"output_uri,omitempty"`
	NodeID         *string          `json:"node_id,omitempty"`
	EnqueuedAt     time.Time        `json:"enqueued_at"`
	StartedAt      *time.Time       `json:"started_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// --- Run Handlers ---

// createRun handles POST /api/v1/runs
func (s *Server) createRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.validator.ValidateServiceName(req.Service); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.ValidateCommand(req.Command); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Log routing is validated here so a bad component is rejected at
	// submission instead of surfacing as a failed run later.
	if req.Component != "" {
		if err := logsink.ValidateComponent(req.Component); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		level := req.Level
		if level == "" {
			level = logsink.DefaultLevel
		}
		if err := logsink.ValidateLevel(level); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.TimeoutSeconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeout_seconds must not be negative"})
		return
	}

	run := &models.Run{
		ID:             uuid.New(),
		Service:        req.Service,
		Command:        req.Command,
		Component:      req.Component,
		Level:          req.Level,
		Cluster:        req.Cluster,
		Instance:       req.Instance,
		Env:            req.Env,
		TimeoutSeconds: req.TimeoutSeconds,
		Status:         models.RunPending,
		EnqueuedAt:     time.Now(),
	}

	if err := s.runStore.CreateRun(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run: " + err.Error()})
		return
	}

	if err := s.queue.Push(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue run: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, runToResponse(run))
}

// listRuns handles GET /api/v1/runs
func (s *Server) listRuns(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	var (
		runs []models.Run
		err  error
	)
	if service := c.Query("service"); service != "" {
		runs, err = s.runStore.ListRunsForService(c.Request.Context(), service, limit)
	} else {
		runs, err = s.runStore.ListRuns(c.Request.Context(), limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs: " + err.Error()})
		return
	}

	response := make([]RunResponse, len(runs))
	for i := range runs {
		response[i] = runToResponse(&runs[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  response,
		"count": len(response),
	})
}

// getRun handles GET /api/v1/runs/:id
func (s *Server) getRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}

	run, err := s.runStore.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, runToResponse(run))
}

// getRunOutput handles GET /api/v1/runs/:id/output
func (s *Server) getRunOutput(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}

	run, err := s.runStore.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	if run.OutputURI == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no stored output"})
		return
	}

	output, err := s.outputs.Retrieve(c.Request.Context(), run.OutputURI)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve output: " + err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", output)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func runToResponse(run *models.Run) RunResponse {
	return RunResponse{
		ID:             run.ID,
		Service:        run.Service,
		Command:        run.Command,
		Component:      run.Component,
		Level:          run.Level,
		Cluster:        run.Cluster,
		Instance:       run.Instance,
		TimeoutSeconds: run.TimeoutSeconds,
		Status:         run.Status,
		ExitCode:       run.ExitCode,
		TimedOut:       run.TimedOut,
		OutputURI:      run.OutputURI,
		NodeID:         run.NodeID,
		EnqueuedAt:     run.EnqueuedAt,
		StartedAt:      run.StartedAt,
		CompletedAt:    run.CompletedAt,
		CreatedAt:      run.CreatedAt,
	}
}
