// Package server exposes the parser over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phuslu/log"

	"github.com/tsawler/docstruct"
	"github.com/tsawler/docstruct/export"
	"github.com/tsawler/docstruct/internal/config"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	log    *log.Logger
	cfg    *config.Config
}

// New creates and configures the HTTP server.
func New(cfg *config.Config, logger *log.Logger) *Server {
	s := &Server{
		log: logger,
		cfg: cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/parse", s.handleParse)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleParse accepts a DOCX as the multipart field "file" or as the raw
// request body, and responds with the parsed document in the format named
// by the "format" query parameter.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1024*1024) // extra 1MB for form overhead

	name, data, status, err := readUpload(r, limit)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	start := time.Now()
	doc, err := docstruct.FromBytes(name, data).WithOptions(s.cfg.Options()).Parse()
	if err != nil {
		s.log.Warn().Str("file", name).Err(err).Msg("parse failed")
		jsonError(w, err.Error(), parseErrorStatus(err))
		return
	}
	s.log.Info().
		Str("file", name).
		Int("blocks", doc.Stats.Blocks).
		Int("diagnostics", len(doc.Diagnostics)).
		Dur("elapsed", time.Since(start)).
		Msg("parsed")

	var buf bytes.Buffer
	if err := export.Render(doc, format, &buf); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}

// readUpload returns the uploaded file name and bytes, or an HTTP status
// and error describing why the upload was rejected.
func readUpload(r *http.Request, limit int64) (string, []byte, int, error) {
	name := sanitizeFilename(r.URL.Query().Get("name"))
	body := io.Reader(r.Body)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return "", nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()
		name = sanitizeFilename(header.Filename)
		body = file
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", limit)
		}
		return "", nil, http.StatusBadRequest, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return "", nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	if len(data) == 0 {
		return "", nil, http.StatusBadRequest, errors.New("empty upload")
	}
	return name, data, http.StatusOK, nil
}

func parseErrorStatus(err error) int {
	switch {
	case errors.Is(err, docstruct.ErrNotWordPackage):
		return http.StatusUnsupportedMediaType
	case docstruct.IsStage(err, docstruct.StageOpen), docstruct.IsStage(err, docstruct.StageBody):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "upload.docx"
	}
	return name
}
