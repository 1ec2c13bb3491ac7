package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/vaultsearch/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// DefaultLimit is used when a tool call omits limit.
const DefaultLimit = 10

// Server wraps an MCP server that exposes vault search tools.
type Server struct {
	search       *search.Service
	defaultLimit int
	logger       *slog.Logger
	mcp          *server.MCPServer
}

// NewServer creates a new MCP server backed by svc. A defaultLimit below 1
// means DefaultLimit.
func NewServer(svc *search.Service, defaultLimit int, logger *slog.Logger) *Server {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		search:       svc,
		defaultLimit: defaultLimit,
		logger:       logger,
	}

	s.mcp = server.NewMCPServer(
		"vaultsearch",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchSnippetsTool, s.handleSearchSnippets)
	s.mcp.AddTool(searchFullTool, s.handleSearchFull)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
