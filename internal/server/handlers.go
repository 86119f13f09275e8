package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/models"
)

// handleIngest rebuilds a conversation's index from a workspace tree.
// 400: missing root_file_id. 404: root not found or tree has no extractable
// content. 500: anything else, including an empty corpus reaching the build.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ingest request",
		zap.String("conversation_id", conversationID),
		zap.String("root_file_id", req.RootFileID),
	)
	result, err := s.ingestor.Ingest(r.Context(), conversationID, req.RootFileID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleQuery answers a question against a conversation's index.
// 400: missing question. 404: conversation never built. 500: gateway or
// other internal failure — distinguishable so callers know whether to
// re-ingest or just retry.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("query request", zap.String("conversation_id", conversationID))
	result, err := s.engine.Answer(r.Context(), conversationID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrIndexNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, models.ErrGateway):
			s.logger.Error("gateway failure", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		default:
			s.logger.Error("query failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type createWorkspaceRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req createWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	ws := &models.Workspace{
		ID:      uuid.New().String(),
		OwnerID: req.OwnerID,
		Name:    req.Name,
	}
	if err := s.store.CreateWorkspace(r.Context(), ws); err != nil {
		s.logger.Error("create workspace failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ws, err := s.store.GetWorkspace(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "workspace not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ws)
}

// handleDeleteFile removes a file node and its stored blob. Previously built
// indexes are left as they are; dropping them is the caller's decision.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	node, err := s.store.GetFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "file not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if node.StoredName != "" {
		if err := s.blobs.Remove(node.StoredName); err != nil {
			s.logger.Warn("blob removal failed", zap.String("file_id", fileID), zap.Error(err))
		}
	}
	if err := s.store.DeleteFile(r.Context(), fileID); err != nil {
		s.logger.Error("delete file failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type createConversationRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	conv := &models.Conversation{
		ID:   uuid.New().String(),
		Name: req.Name,
	}
	if err := s.store.SaveConversation(r.Context(), conv); err != nil {
		s.logger.Error("create conversation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaces, err := s.store.CountWorkspaces(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	files, err := s.store.CountFiles(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	conversations, err := s.store.CountConversations(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"workspaces":    workspaces,
		"files":         files,
		"conversations": conversations,
		"config": map[string]interface{}{
			"chunk_size":      s.config.Ingest.ChunkSize,
			"chunk_overlap":   s.config.Ingest.ChunkOverlap,
			"top_k":           s.config.Query.TopK,
			"embedding_model": s.config.Gateway.EmbeddingModel,
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
