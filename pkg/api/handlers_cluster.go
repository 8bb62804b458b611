package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"armada/pkg/logsink"
)

// --- Log Handlers ---

// PostLogRequest is the payload for emitting a single log line.
type PostLogRequest struct {
	Service   string `json:"service" binding:"required"`
	Component string `json:"component" binding:"required"`
	Line      string `json:"line" binding:"required"`
	Level     string `json:"level"`
	Cluster   string `json:"cluster"`
	Instance  string `json:"instance"`
}

// postLogLine handles POST /api/v1/logs. It forwards one line to the
// service's log stream through the same sink the agents use.
func (s *Server) postLogLine(c *gin.Context) {
	var req PostLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := logsink.Options{
		Level:    req.Level,
		Cluster:  req.Cluster,
		Instance: req.Instance,
	}
	if err := s.sink.Log(c.Request.Context(), req.Service, req.Component, req.Line, opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"stream": logsink.StreamNameForService(req.Service),
	})
}

// listComponents handles GET /api/v1/logs/components
func (s *Server) listComponents(c *gin.Context) {
	components := make(map[string]gin.H, len(logsink.Components))
	for _, name := range logsink.ComponentNames() {
		comp := logsink.Components[name]
		components[name] = gin.H{
			"help": comp.Help,
			"tail": comp.Tail,
		}
	}
	c.JSON(http.StatusOK, gin.H{"components": components})
}

// --- Cluster Handlers ---

// listNodes handles GET /api/v1/cluster/nodes
func (s *Server) listNodes(c *gin.Context) {
	nodes, err := s.coordinator.GetActiveNodes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get nodes: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes": nodes,
		"count": len(nodes),
	})
}

// getLeader handles GET /api/v1/cluster/leader
func (s *Server) getLeader(c *gin.Context) {
	if s.election == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leader election not configured"})
		return
	}

	leader, err := s.election.Leader(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no leader elected"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leader": leader})
}
