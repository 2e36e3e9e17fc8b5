package server

import (
	"net/http"

	"github.com/aleister1102/grcdigest/internal/digest"
	"github.com/gin-gonic/gin"
)

// DigestResponse is the body of a successful POST /api/digest.
type DigestResponse struct {
	RunID  string         `json:"run_id"`
	Owners *digest.Digest `json:"owners"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDigest(c *gin.Context) {
	result, err := s.runner.Run(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Digest run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, DigestResponse{RunID: result.RunID, Owners: result.Digest})
}
