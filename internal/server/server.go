// Package server provides the HTTP API for Kaiwa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/config"
	"github.com/driftlab/kaiwa/internal/ingest"
	"github.com/driftlab/kaiwa/internal/query"
	"github.com/driftlab/kaiwa/internal/workspace"
)

// Server is the HTTP server for the Kaiwa API.
type Server struct {
	ingestor *ingest.Ingestor
	engine   *query.Engine
	store    workspace.Store
	blobs    *workspace.BlobStore
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	ingestor *ingest.Ingestor,
	engine *query.Engine,
	store workspace.Store,
	blobs *workspace.BlobStore,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingestor: ingestor,
		engine:   engine,
		store:    store,
		blobs:    blobs,
		config:   cfg,
		logger:   logger,
	}
}

// router builds the chi router with all routes and middleware.
func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/workspaces", s.handleCreateWorkspace)
	r.Get("/api/v1/workspaces/{id}", s.handleGetWorkspace)
	r.Post("/api/v1/workspaces/{id}/files", s.handleUploadFile)
	r.Delete("/api/v1/workspaces/{id}/files/{fileID}", s.handleDeleteFile)

	r.Post("/api/v1/conversations", s.handleCreateConversation)
	r.Post("/api/v1/conversations/{id}/ingest", s.handleIngest)
	r.Post("/api/v1/conversations/{id}/query", s.handleQuery)

	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
