package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/models"
)

// handleUploadFile accepts a multipart upload, stores the blob, and attaches
// a new file node to the workspace. The extension must be in the allowed
// list; the blob keeps it so extraction can dispatch later.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "id")
	ws, err := s.store.GetWorkspace(r.Context(), workspaceID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "workspace not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Ingest.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.Ingest.MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !s.extensionAllowed(ext) {
		s.respondError(w, http.StatusBadRequest, "unsupported file type "+ext)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	storedName, err := s.blobs.Save(header.Filename, file)
	if err != nil {
		s.logger.Error("blob save failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	node := &models.FileNode{
		ID:         uuid.New().String(),
		OwnerID:    ws.OwnerID,
		Name:       name,
		StoredName: storedName,
	}
	if err := s.store.CreateFile(r.Context(), node); err != nil {
		_ = s.blobs.Remove(storedName)
		s.logger.Error("create file node failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.AttachFile(r.Context(), workspaceID, node.ID); err != nil {
		s.logger.Error("attach file failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("file uploaded",
		zap.String("workspace_id", workspaceID),
		zap.String("file_id", node.ID),
		zap.String("stored_name", storedName),
	)
	s.respondJSON(w, http.StatusCreated, node)
}

func (s *Server) extensionAllowed(ext string) bool {
	for _, a := range s.config.Ingest.AllowedExtensions {
		if strings.EqualFold(strings.TrimPrefix(a, "."), strings.TrimPrefix(ext, ".")) {
			return true
		}
	}
	return false
}
