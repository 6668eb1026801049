// Package httpapi binds the theme operations to HTTP routes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmylchreest/loginthemes/internal/theme"
)

// MaxBodyBytes caps JSON request bodies; themes are plain stylesheets.
const MaxBodyBytes = 16 << 20

// ThemeService is the set of theme operations exposed over HTTP.
type ThemeService interface {
	List() []theme.ThemeRecord
	Current() (string, *theme.ThemeRecord)
	Apply(id string) (string, error)
	Import(name, css string, meta theme.Metadata) (string, error)
	Update(id, css string, meta *theme.Metadata) error
	Delete(id string) error
	Export(id string) (theme.Export, error)
}

// Server serves the theme API under a base path.
type Server struct {
	service  ThemeService
	basePath string
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates a Server and registers its routes.
func NewServer(service ThemeService, basePath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:  service,
		basePath: normalizeBasePath(basePath),
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root handler with request ids and access logging applied.
func (s *Server) Handler() http.Handler {
	return withRequestLogging(withRecovery(s.mux, s.logger), s.logger)
}

// BasePath returns the normalised prefix all routes are mounted under.
func (s *Server) BasePath() string {
	return s.basePath
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET "+s.basePath+"/list", s.handleList)
	s.mux.HandleFunc("GET "+s.basePath+"/current", s.handleCurrent)
	s.mux.HandleFunc("POST "+s.basePath+"/apply", s.handleApply)
	s.mux.HandleFunc("POST "+s.basePath+"/import", s.handleImport)
	s.mux.HandleFunc("POST "+s.basePath+"/update", s.handleUpdate)
	s.mux.HandleFunc("DELETE "+s.basePath+"/delete/{themeId}", s.handleDelete)
	s.mux.HandleFunc("GET "+s.basePath+"/export/{themeId}", s.handleExport)
	s.mux.HandleFunc("GET "+s.basePath+"/preview/{themeId}", s.handlePreview)
}

type listResponse struct {
	Themes       []theme.ThemeRecord `json:"themes"`
	CurrentTheme string              `json:"currentTheme"`
}

type currentResponse struct {
	CurrentTheme string             `json:"currentTheme"`
	ThemeInfo    *theme.ThemeRecord `json:"themeInfo"`
}

type applyRequest struct {
	ThemeID string `json:"themeId"`
}

type importRequest struct {
	Name     string          `json:"name"`
	CSS      string          `json:"css"`
	Metadata *theme.Metadata `json:"metadata"`
}

type updateRequest struct {
	ThemeID  string          `json:"themeId"`
	CSS      string          `json:"css"`
	Metadata *theme.Metadata `json:"metadata"`
}

type resultResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Theme   string `json:"theme,omitempty"`
	ThemeID string `json:"themeId,omitempty"`
}

type exportResponse struct {
	Success bool              `json:"success"`
	CSS     string            `json:"css"`
	Meta    theme.ThemeRecord `json:"meta"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	current, _ := s.service.Current()
	writeJSON(w, http.StatusOK, listResponse{
		Themes:       s.service.List(),
		CurrentTheme: current,
	})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	id, info := s.service.Current()
	writeJSON(w, http.StatusOK, currentResponse{CurrentTheme: id, ThemeInfo: info})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	if req.ThemeID == "" {
		writeFailure(w, http.StatusBadRequest, errors.New("themeId is required"))
		return
	}

	applied, err := s.service.Apply(req.ThemeID)
	if err != nil {
		s.logger.Warn("apply failed", "theme", req.ThemeID, "error", err)
		writeFailure(w, http.StatusOK, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true, Theme: applied})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" || req.CSS == "" {
		writeFailure(w, http.StatusBadRequest, errors.New("name and css are required"))
		return
	}

	var meta theme.Metadata
	if req.Metadata != nil {
		meta = *req.Metadata
	}
	id, err := s.service.Import(req.Name, req.CSS, meta)
	if err != nil {
		s.logger.Warn("import failed", "name", req.Name, "error", err)
		writeFailure(w, http.StatusOK, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true, ThemeID: id})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	if req.ThemeID == "" || req.CSS == "" {
		writeFailure(w, http.StatusBadRequest, errors.New("themeId and css are required"))
		return
	}

	if err := s.service.Update(req.ThemeID, req.CSS, req.Metadata); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, theme.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.logger.Warn("update failed", "theme", req.ThemeID, "error", err)
		writeFailure(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true, ThemeID: req.ThemeID})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("themeId")
	if err := s.service.Delete(id); err != nil {
		s.logger.Warn("delete failed", "theme", id, "error", err)
		writeFailure(w, http.StatusOK, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.service.Export(r.PathValue("themeId"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, theme.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeFailure(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Success: true, CSS: export.CSS, Meta: export.Meta})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")

	export, err := s.service.Export(r.PathValue("themeId"))
	switch {
	case errors.Is(err, theme.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "/* Theme not found */")
		return
	case err != nil:
		s.logger.Warn("preview failed", "theme", r.PathValue("themeId"), "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "/* Error loading theme */")
		return
	}
	_, _ = io.WriteString(w, export.CSS)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeFailure(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, resultResponse{Success: false, Error: err.Error()})
}

func normalizeBasePath(value string) string {
	path := strings.TrimSpace(value)
	if path == "" || path == "/" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}
