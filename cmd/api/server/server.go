package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"user-crud-service/cmd/api/di"

	"go.uber.org/zap"
)

// Server owns the HTTP listener for the REST API.
type Server struct {
	Logger *zap.Logger
	Gin    *http.Server
}

// New creates a new server instance
func New(c *di.Container) *Server {
	return &Server{
		Logger: c.Logger,
		Gin:    SetupGinServer(c, ":"+c.Config.App.HTTPPort),
	}
}

// Start listens and serves until the server is shut down. A clean shutdown
// returns nil.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("HTTP server running", zap.String("address", lis.Addr().String()))
	if err := s.Gin.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Gin.Shutdown(ctx)
}
