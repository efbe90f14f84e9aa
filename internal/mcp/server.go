// Package mcp exposes the report collection to AI agents over the Model
// Context Protocol.
package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes report tools.
type Server struct {
	engine *lifecycle.Engine
	pulse  *analysis.PulseTracker
	loc    *time.Location
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. pulse may be nil, which disables
// get_pulse summaries.
func NewServer(engine *lifecycle.Engine, pulse *analysis.PulseTracker, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	s := &Server{
		engine: engine,
		pulse:  pulse,
		loc:    loc,
	}

	s.mcp = server.NewMCPServer(
		"urbix",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listReportsTool, s.handleListReports)
	s.mcp.AddTool(getReportTool, s.handleGetReport)
	s.mcp.AddTool(getStatisticsTool, s.handleGetStatistics)
	s.mcp.AddTool(updateReportStatusTool, s.handleUpdateReportStatus)
	s.mcp.AddTool(getPulseTool, s.handleGetPulse)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
