// Package mcp exposes module resolution, annotation and diagnostic suppression as MCP
// tools served on stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"
)

// ServerName and ServerVersion identify the server to MCP clients.
const (
	ServerName    = "jacbridge-mcp"
	ServerVersion = "1.0.0"
)

// Lifecycle is implemented by bridges that need Start/Stop around serving.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop() error
}

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	bridge Bridge
	mcp    *server.MCPServer
}

// NewMCPServer creates an MCP server with the jac_resolve, jac_annotate and jac_suppress
// tools registered over b. Files are read through fsys; nil means the OS filesystem.
func NewMCPServer(b Bridge, fsys afero.Fs) (*MCPServer, error) {
	if b == nil {
		return nil, fmt.Errorf("bridge is required")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	AddJacResolveTool(mcpServer, b)
	AddJacAnnotateTool(mcpServer, b, fsys)
	AddJacSuppressTool(mcpServer, b)

	return &MCPServer{bridge: b, mcp: mcpServer}, nil
}

// Server returns the underlying mcp-go server.
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if lc, ok := s.bridge.(Lifecycle); ok {
		if err := lc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start bridge: %w", err)
		}
		defer lc.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[mcp] starting server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("[mcp] received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
