//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/logger"
	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/utils"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna"
)

const maxUploadBytes = 100 << 20

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service vocaldna.Service
	config  *ServerConfig
	log     vocaldna.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
	MaxDuration    time.Duration
}

// NewServer creates a new server instance
func NewServer(service vocaldna.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger().WithPrefix("[api]"),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondLookupError maps missing labels and empty reports to 404 and
// everything else to 500.
func (s *Server) respondLookupError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, vocaldna.ErrNotFound), errors.Is(err, vocaldna.ErrNoData):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Errorf("Failed to %s: %v", what, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to "+what)
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	eps := make(map[string]string, len(endpoints))
	for _, ep := range endpoints {
		eps[ep.Name] = ep.Route
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service":   "VocalDNA API",
		"version":   "1.0.0",
		"endpoints": eps,
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleEngines handles GET /api/health/engines
func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	statuses := s.service.EngineHealth(ctx)
	status := "healthy"
	for _, st := range statuses {
		if !st.Available {
			status = "degraded"
			break
		}
	}
	s.respondJSON(w, http.StatusOK, EnginesResponse{Status: status, Engines: statuses})
}

// handleAnalyze handles POST /api/analyze (multipart file upload)
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	meta := models.LabelMetadata{
		SourceURL: r.FormValue("source_url"),
		Title:     r.FormValue("title"),
		Artist:    r.FormValue("artist"),
		SongName:  r.FormValue("song_name"),
		Category:  r.FormValue("category"),
		Genre:     r.FormValue("genre"),
		Language:  r.FormValue("language"),
		Notes:     r.FormValue("notes"),
	}
	if v := r.FormValue("user_rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil || rating < 0 || rating > 5 {
			s.respondError(w, http.StatusBadRequest, "user_rating must be between 0 and 5")
			return
		}
		meta.UserRating = rating
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if meta.SourceURL != "" && utils.IsYouTubeURL(meta.SourceURL) {
		if id, err := utils.ExtractYouTubeID(meta.SourceURL); err == nil {
			meta.YouTubeID = id
		}
	}

	duration := s.config.MaxDuration
	if v := r.FormValue("duration"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			s.respondError(w, http.StatusBadRequest, "duration must be a Go duration such as 30s")
			return
		}
		if duration == 0 || (d > 0 && d < duration) {
			duration = d
		}
	}

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Errorf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer os.Remove(tempFile)

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.log.Errorf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	out.Close()

	s.log.Infof("Analysing upload: %s", header.Filename)
	result, err := s.service.AnalyzeAndLabel(ctx, tempFile, meta, duration)
	if err != nil {
		s.log.Errorf("Failed to analyse %s: %v", header.Filename, err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to analyse audio: %v", err))
		return
	}

	resp := AnalyzeResponse{
		Message:  "Analysis complete",
		Summary:  result.Summary,
		Warnings: result.Warnings,
	}
	status := http.StatusOK
	if result.Label != nil {
		resp.ID = result.Label.ID
		resp.Message = "Analysis complete, label stored"
		status = http.StatusCreated
	}
	s.respondJSON(w, status, resp)
}

// handleLabels handles GET /api/labels
func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var (
		labels []models.Label
		err    error
	)
	if artist := r.URL.Query().Get("artist"); artist != "" {
		labels, err = s.service.LabelsByArtist(artist)
	} else {
		limit, perr := queryLimit(r)
		if perr != nil {
			s.respondError(w, http.StatusBadRequest, perr.Error())
			return
		}
		labels, err = s.service.RecentLabels(limit)
	}
	if err != nil {
		s.respondLookupError(w, err, "retrieve labels")
		return
	}

	dtos := make([]LabelDTO, len(labels))
	for i, l := range labels {
		dtos[i] = toLabelDTO(l)
	}
	s.respondJSON(w, http.StatusOK, ListLabelsResponse{Labels: dtos, Count: len(dtos)})
}

// handleLabel routes /api/labels/{id} and its sub-resources
func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/labels/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}

	id := parts[0]
	if !utils.IsValidID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid label ID")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		s.handleGetLabel(w, id)
	case sub == "" && r.Method == http.MethodDelete:
		s.handleDeleteLabel(w, id)
	case sub == "assessment" && r.Method == http.MethodGet:
		s.handleAssessment(w, id)
	case sub == "practice" && r.Method == http.MethodPost:
		s.handlePractice(w, r, id)
	case sub == "stats" && r.Method == http.MethodGet:
		s.handleStats(w, id)
	case sub == "" || sub == "assessment" || sub == "practice" || sub == "stats":
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		http.NotFound(w, r)
	}
}

// handleGetLabel handles GET /api/labels/{id}
func (s *Server) handleGetLabel(w http.ResponseWriter, id string) {
	label, err := s.service.GetLabel(id)
	if err != nil {
		s.respondLookupError(w, err, "retrieve label")
		return
	}
	s.respondJSON(w, http.StatusOK, label)
}

// handleDeleteLabel handles DELETE /api/labels/{id}
func (s *Server) handleDeleteLabel(w http.ResponseWriter, id string) {
	if err := s.service.DeleteLabel(id); err != nil {
		s.respondLookupError(w, err, "delete label")
		return
	}
	s.log.Infof("Deleted label %s", id)
	s.respondJSON(w, http.StatusOK, DeleteLabelResponse{Message: "Label deleted successfully", ID: id})
}

// handleAssessment handles GET /api/labels/{id}/assessment
func (s *Server) handleAssessment(w http.ResponseWriter, id string) {
	label, err := s.service.GetLabel(id)
	if err != nil {
		s.respondLookupError(w, err, "retrieve label")
		return
	}
	if label.Summary == nil || label.Summary.Professional == nil {
		s.respondError(w, http.StatusNotFound, "No professional analysis for this label")
		return
	}
	s.respondJSON(w, http.StatusOK, label.Summary.Professional)
}

// handlePractice handles POST /api/labels/{id}/practice
func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request, id string) {
	var req PracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID, err := s.service.RecordPractice(req.toSession(id))
	if err != nil {
		s.respondLookupError(w, err, "record practice session")
		return
	}
	s.respondJSON(w, http.StatusCreated, PracticeResponse{
		Message: "Practice session recorded",
		ID:      sessionID,
		LabelID: id,
	})
}

// handleStats handles GET /api/labels/{id}/stats
func (s *Server) handleStats(w http.ResponseWriter, id string) {
	if _, err := s.service.GetLabel(id); err != nil {
		s.respondLookupError(w, err, "retrieve label")
		return
	}
	stats, err := s.service.PracticeStats(id)
	if err != nil {
		s.respondLookupError(w, err, "aggregate practice sessions")
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// handleExport handles GET /api/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="vocaldna-export.json"`)
	n, err := s.service.ExportLabels(w)
	if err != nil {
		// Headers are gone once the encoder started writing.
		s.log.Errorf("Export failed after %d labels: %v", n, err)
		return
	}
	s.log.Infof("Exported %d labels", n)
}

// handleReport handles GET /api/reports/{health|technique|progress}
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var report any
	switch kind := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/reports/"), "/"); kind {
	case "health":
		report, err = s.service.HealthReport(limit)
	case "technique":
		report, err = s.service.TechniqueReport(r.URL.Query().Get("artist"), limit)
	case "progress":
		report, err = s.service.LearningProgress(limit)
	default:
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Unknown report %q", kind))
		return
	}
	if err != nil {
		s.respondLookupError(w, err, "build report")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// queryLimit reads ?limit=; zero means the callee's default.
func queryLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}
