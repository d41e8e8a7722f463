package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"github.com/datkingvn/pvoil-sub000/internal/services/inventory"
	"github.com/datkingvn/pvoil-sub000/internal/services/obstacle"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/datkingvn/pvoil-sub000/internal/services/speed"
	"github.com/datkingvn/pvoil-sub000/internal/services/summit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server exposes the round engines over HTTP and a websocket event stream
type Server struct {
	obstacle   obstacle.Service
	speed      speed.Service
	summit     summit.Service
	registry   registry.Service
	inventory  inventory.Service
	subscriber events.Subscriber
	logger     *zap.Logger
	router     *gin.Engine
}

// Config holds the services the server routes to
type Config struct {
	Obstacle   obstacle.Service
	Speed      speed.Service
	Summit     summit.Service
	Registry   registry.Service
	Inventory  inventory.Service
	Subscriber events.Subscriber
	Logger     *zap.Logger
}

// New creates the server and registers its routes
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Obstacle == nil || cfg.Speed == nil || cfg.Summit == nil {
		return nil, errors.New("round services cannot be nil")
	}

	if cfg.Registry == nil {
		return nil, errors.New("registry service cannot be nil")
	}

	if cfg.Inventory == nil {
		return nil, errors.New("inventory service cannot be nil")
	}

	if cfg.Subscriber == nil {
		return nil, errors.New("event subscriber cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		obstacle:   cfg.Obstacle,
		speed:      cfg.Speed,
		summit:     cfg.Summit,
		registry:   cfg.Registry,
		inventory:  cfg.Inventory,
		subscriber: cfg.Subscriber,
		logger:     logger,
	}
	s.router = s.routes()

	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))

	router.GET("/health", func(c *gin.Context) { ok(c, gin.H{"status": "ok"}) })

	show := router.Group("/api/shows/:showID")
	{
		show.GET("/teams", s.getTeams)
		show.PUT("/teams", s.setRoster)
		show.POST("/teams/:teamID/adjust", s.adjustScore)

		show.GET("/bank", s.getBank)
		show.POST("/bank/reset", s.resetBank)

		show.GET("/obstacle", s.obstacleState)
		show.POST("/obstacle/actions", s.obstacleAction)
		show.GET("/speed", s.speedState)
		show.POST("/speed/actions", s.speedAction)
		show.GET("/summit", s.summitState)
		show.POST("/summit/actions", s.summitAction)

		show.GET("/ws", s.streamEvents)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
