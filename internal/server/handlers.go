package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valpere/amicooked/internal/scenario"
)

type judgeRequest struct {
	Scenario string `json:"scenario"`
	Language string `json:"language"`
}

// judgeResponse carries either a model judgement or the predefined flag.
type judgeResponse struct {
	Percentage *int   `json:"percentage,omitempty"`
	Verdict    string `json:"verdict,omitempty"`
	IsCooked   bool   `json:"isCooked"`
	Predefined bool   `json:"predefined,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleJudge(c *gin.Context) {
	var req judgeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	outcome, err := s.judger.JudgeScenario(c.Request.Context(), req.Scenario, req.Language)
	switch {
	case errors.Is(err, scenario.ErrEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Scenario is required"})
		return
	case errors.Is(err, scenario.ErrTooLong):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Scenario too long. Max %d characters.", s.judger.MaxLength()),
		})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to judge scenario",
			"details": err.Error(),
		})
		return
	}

	resp := judgeResponse{IsCooked: outcome.IsCooked}
	if outcome.Judgement == nil {
		resp.Predefined = true
	} else {
		p := outcome.Judgement.Percentage
		resp.Percentage = &p
		resp.Verdict = outcome.Judgement.Verdict
	}
	c.JSON(http.StatusOK, resp)
}
