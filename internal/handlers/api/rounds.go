package api

import (
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/services/obstacle"
	"github.com/datkingvn/pvoil-sub000/internal/services/speed"
	"github.com/datkingvn/pvoil-sub000/internal/services/summit"
	"github.com/gin-gonic/gin"
)

func bindAction(c *gin.Context) (*actionRequest, error) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", gameerr.ErrInvalidInput, err)
	}
	if req.Action == "" {
		return nil, fmt.Errorf("%w: action is required", gameerr.ErrInvalidInput)
	}
	return &req, nil
}

func (s *Server) obstacleAction(c *gin.Context) {
	req, err := bindAction(c)
	if err != nil {
		fail(c, err)
		return
	}

	cmd, err := obstacleCommand(req)
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.obstacle.Execute(c.Request.Context(), &obstacle.ExecuteInput{ShowID: c.Param("showID"), Command: cmd})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}

func (s *Server) obstacleState(c *gin.Context) {
	out, err := s.obstacle.GetState(c.Request.Context(), &obstacle.GetStateInput{ShowID: c.Param("showID")})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}

func (s *Server) speedAction(c *gin.Context) {
	req, err := bindAction(c)
	if err != nil {
		fail(c, err)
		return
	}

	cmd, err := speedCommand(req)
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.speed.Execute(c.Request.Context(), &speed.ExecuteInput{ShowID: c.Param("showID"), Command: cmd})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}

func (s *Server) speedState(c *gin.Context) {
	out, err := s.speed.GetState(c.Request.Context(), &speed.GetStateInput{ShowID: c.Param("showID")})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}

func (s *Server) summitAction(c *gin.Context) {
	req, err := bindAction(c)
	if err != nil {
		fail(c, err)
		return
	}

	cmd, err := summitCommand(req)
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.summit.Execute(c.Request.Context(), &summit.ExecuteInput{ShowID: c.Param("showID"), Command: cmd})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}

func (s *Server) summitState(c *gin.Context) {
	out, err := s.summit.GetState(c.Request.Context(), &summit.GetStateInput{ShowID: c.Param("showID")})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}
