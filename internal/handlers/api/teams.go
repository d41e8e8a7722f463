package api

import (
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/services/inventory"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/gin-gonic/gin"
)

type setRosterRequest struct {
	Teams       []registry.RosterEntry `json:"teams"`
	ResetScores bool                   `json:"resetScores"`
}

type adjustScoreRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type bankResponse struct {
	Bank      *models.QuestionBank `json:"bank"`
	Available map[int]int          `json:"available"`
	Used      int                  `json:"used"`
}

func (s *Server) getTeams(c *gin.Context) {
	out, err := s.registry.GetTeams(c.Request.Context(), &registry.GetTeamsInput{ShowID: c.Param("showID")})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out.Registry)
}

func (s *Server) setRoster(c *gin.Context) {
	var req setRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", gameerr.ErrInvalidInput, err))
		return
	}

	out, err := s.registry.SetRoster(c.Request.Context(), &registry.SetRosterInput{
		ShowID:      c.Param("showID"),
		Teams:       req.Teams,
		ResetScores: req.ResetScores,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out.Registry)
}

func (s *Server) adjustScore(c *gin.Context) {
	var req adjustScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", gameerr.ErrInvalidInput, err))
		return
	}

	out, err := s.registry.AdjustScore(c.Request.Context(), &registry.AdjustScoreInput{
		ShowID: c.Param("showID"),
		TeamID: c.Param("teamID"),
		Delta:  req.Delta,
		Reason: req.Reason,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out.Team)
}

func (s *Server) getBank(c *gin.Context) {
	out, err := s.inventory.GetBank(c.Request.Context(), &inventory.GetBankInput{ShowID: c.Param("showID")})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, &bankResponse{Bank: out.Bank, Available: out.Available, Used: out.Used})
}

func (s *Server) resetBank(c *gin.Context) {
	out, err := s.inventory.ResetBank(c.Request.Context(), &inventory.ResetBankInput{ShowID: c.Param("showID")})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, &bankResponse{Bank: out.Bank, Available: out.Available, Used: out.Used})
}
