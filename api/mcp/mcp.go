// Package mcp provides an MCP (Model Context Protocol) server exposing the
// skill validation and creation tools.
package mcp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/skillgate/pkg/provision"
	"github.com/papercomputeco/skillgate/pkg/utils"
)

type Config struct {
	// Pipeline provisions skills and carries the validation gate
	Pipeline *provision.Pipeline

	// Logger is the configured logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler

	createSkillResolved *jsonschema.Resolved
}

// NewServer creates a new MCP server with the validate_code and
// create_skill tools.
func NewServer(c Config) (*Server, error) {
	if c.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	createSkillInput, err := createSkillSchema()
	if err != nil {
		return nil, fmt.Errorf("create_skill input schema: %w", err)
	}
	resolved, err := createSkillInput.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving create_skill input schema: %w", err)
	}

	s := &Server{
		config:              c,
		createSkillResolved: resolved,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "skillgate",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        validateCodeToolName,
		Description: validateCodeDescription,
	}, s.handleValidateCode)

	mcpServer.AddTool(&mcp.Tool{
		Name:        createSkillToolName,
		Description: createSkillDescription,
		InputSchema: createSkillInput,
	}, s.createSkillTool)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// MCPServer returns the underlying MCP server, for connecting over
// transports other than streamable HTTP.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
