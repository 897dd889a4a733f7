package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	infographpkg "github.com/unowned-ai/infograph/pkg"
	"github.com/unowned-ai/infograph/pkg/fetch"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

// Deps are the collaborators the tools call into.
type Deps struct {
	Manager     *notebooks.Manager
	Generator   notebooks.InfographicGenerator
	Transcripts fetch.TranscriptFetcher
	Pages       fetch.PageFetcher
	Logger      *zap.Logger
}

type InfographMCPServer struct {
	mcpServer *server.MCPServer
	deps      Deps
}

// NewInfographMCPServer builds an MCP server with every notebook tool registered.
// The caller owns the database behind deps.Manager.
func NewInfographMCPServer(deps Deps) *InfographMCPServer {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"Infograph MCP Server",
		infographpkg.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	RegisterPingTool(s)
	RegisterNotebookTools(s, deps)
	RegisterSourceTools(s, deps)
	RegisterGenerateInfographicTool(s, deps)

	return &InfographMCPServer{
		mcpServer: s,
		deps:      deps,
	}
}

// Start runs the stdio event loop until stdin closes.
func (s *InfographMCPServer) Start() error {
	s.deps.Logger.Info("mcp server listening on stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *InfographMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
