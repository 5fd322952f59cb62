package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/skillgate/api/mcp"
	"github.com/papercomputeco/skillgate/pkg/logger"
	"github.com/papercomputeco/skillgate/pkg/provision"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

// Server is the skillgate API server.
type Server struct {
	config   Config
	pipeline *provision.Pipeline
	reader   registry.Reader
	limiter  *userLimiter
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server. The reader backs the skill listing
// routes and may be nil when the registry cannot be read back.
func NewServer(config Config, pipeline *provision.Pipeline, reader registry.Reader, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Pipeline: pipeline,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		pipeline: pipeline,
		reader:   reader,
		limiter:  newUserLimiter(config.CreatePerMinute),
		logger:   log,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/validate", s.handleValidate)
	app.Post("/v1/skills", s.requirePrincipal, s.limitCreates, s.handleCreateSkill)
	app.Get("/v1/skills", s.requirePrincipal, s.handleListSkills)
	app.Get("/v1/skills/:name", s.requirePrincipal, s.handleGetSkill)
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
