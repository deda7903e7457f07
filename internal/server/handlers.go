package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/extract"
	"github.com/hayasui/kotae/internal/models"
)

// maxUploadBytes caps multipart ingest uploads at 50 MB.
const maxUploadBytes = 50 << 20

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.String("query", req.Query))

	resp, err := s.engine.Ask(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("ask failed", zap.String("query", req.Query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !extract.Supported(filepath.Ext(name)) {
		s.respondError(w, http.StatusUnsupportedMediaType, extract.ErrUnsupportedFormat.Error())
		return
	}

	// The extractor and ingestor work on paths, so stage the upload in a
	// temp directory under the original file name.
	tmpDir, err := os.MkdirTemp("", "kotae-ingest-")
	if err != nil {
		s.logger.Error("ingest staging failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, name)
	out, err := os.Create(tmpPath)
	if err != nil {
		s.logger.Error("ingest staging failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		s.logger.Error("ingest upload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = out.Close()

	n, err := s.ingestor.IngestFile(r.Context(), tmpPath)
	if err != nil {
		s.logger.Error("ingest failed", zap.String("source", name), zap.Error(err))
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			s.respondError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, extract.ErrNoContent):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"source_file": name,
		"fragments":   n,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	s.logger.Debug("delete document request", zap.String("source", source))

	deleted, err := s.ingestor.Remove(r.Context(), source)
	if err != nil {
		s.logger.Error("deletion failed", zap.String("source", source), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if deleted == 0 {
		s.respondError(w, http.StatusNotFound, "source not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"source_file": source,
		"deleted":     deleted,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"fragments": stats.Fragments,
		"sources":   stats.Sources,
	}
	if s.watch != nil {
		resp["watch_dirs"] = s.watch.Directories()
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
