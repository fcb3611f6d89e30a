package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/samarth/internal/logger"
)

// Version is reported to MCP clients during initialisation.
const Version = "0.1.0"

// serverName identifies Samarth to MCP clients.
const serverName = "samarth"

// instructions is sent to clients so agents know when to call Samarth.
const instructions = `Samarth answers questions about Indian agriculture and climate using
crop production and rainfall records published on data.gov.in.
Call ask for natural-language questions. Answers cite the data.gov.in
records they were built from. Check index_status first when answers come
back without sources, since an empty index has nothing to cite.`

const shutdownGrace = 5 * time.Second

// Server exposes the question answering and indexing ports over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer builds the MCP server and registers its tools and resources.
// Only the answer port is required.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("mcp server: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: serverName, Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves a single client over stdin and stdout.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio session: %w", err)
	}
	return nil
}

// RunHTTP serves the streamable HTTP transport on addr. Every session
// shares the same tool set. It returns nil once ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: http shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on http://%s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http on %s: %w", addr, err)
	}
	return nil
}
