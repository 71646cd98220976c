// Package server exposes the engine as Model Context Protocol tools.
package server

import (
	"context"
	"fmt"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/botvision/internal/bot"
	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/version"
)

// Runner executes named steps. *bot.Session implements it.
type Runner interface {
	RunStep(ctx context.Context, name string, params map[string]interface{}) (bot.StepResult, error)
}

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server wraps the MCP server around a Runner.
type Server struct {
	runner Runner
	// runMu serializes tool calls; concurrent input on one desktop races.
	runMu sync.Mutex
	mcp   *mcpserver.MCPServer
	log   logger.Logger
}

// New creates an MCP server with all botvision tools registered.
func New(runner Runner, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		runner: runner,
		mcp:    mcpserver.NewMCPServer("botvision", version.Version),
		log:    log,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio", "":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		s.log.Info("mcp server listening", "port", cfg.Port)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}
