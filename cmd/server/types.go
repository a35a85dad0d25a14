//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"fmt"
	"time"

	"github.com/himanishpuri/VocalDNA/pkg/models"
	"github.com/himanishpuri/VocalDNA/pkg/vocaldna/engine"
)

// endpoint describes one route for the root listing and the startup log.
type endpoint struct {
	Name        string
	Route       string
	Description string
}

var endpoints = []endpoint{
	{"health", "GET /health", "Health check"},
	{"engines", "GET /api/health/engines", "Engine reachability"},
	{"analyze", "POST /api/analyze", "Analyse an uploaded recording and store a label"},
	{"labels", "GET /api/labels", "List recent labels (?limit=, ?artist=)"},
	{"getLabel", "GET /api/labels/{id}", "Get label by ID"},
	{"deleteLabel", "DELETE /api/labels/{id}", "Delete label and its practice sessions"},
	{"assessment", "GET /api/labels/{id}/assessment", "Professional analysis of a label"},
	{"practice", "POST /api/labels/{id}/practice", "Record a practice session"},
	{"stats", "GET /api/labels/{id}/stats", "Practice statistics"},
	{"export", "GET /api/export", "Export all labels as JSON"},
	{"reports", "GET /api/reports/{kind}", "health, technique or progress report"},
}

// LabelDTO is the list view of a label; the full summary is only returned by
// GET /api/labels/{id}.
type LabelDTO struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Artist           string           `json:"artist"`
	YouTubeID        string           `json:"youtube_id,omitempty"`
	AveragePitch     string           `json:"average_pitch"`
	PitchRange       string           `json:"pitch_range"`
	MainTechnique    models.Technique `json:"main_technique"`
	DominantRegister models.Register  `json:"dominant_register"`
	TotalScore       float64          `json:"total_score"`
	Grade            models.Grade     `json:"grade"`
	Duration         float64          `json:"duration_analyzed"`
	CreatedAt        time.Time        `json:"created_at"`
}

func toLabelDTO(l models.Label) LabelDTO {
	return LabelDTO{
		ID:               l.ID,
		Title:            l.Metadata.Title,
		Artist:           l.Metadata.Artist,
		YouTubeID:        l.Metadata.YouTubeID,
		AveragePitch:     l.AveragePitch,
		PitchRange:       l.PitchRange,
		MainTechnique:    l.MainTechnique,
		DominantRegister: l.DominantRegister,
		TotalScore:       l.TotalScore,
		Grade:            l.Grade,
		Duration:         l.Metadata.DurationAnalyzed,
		CreatedAt:        l.CreatedAt,
	}
}

// ListLabelsResponse is the response for GET /api/labels
type ListLabelsResponse struct {
	Labels []LabelDTO `json:"labels"`
	Count  int        `json:"count"`
}

// AnalyzeResponse is the response for POST /api/analyze
type AnalyzeResponse struct {
	Message  string                 `json:"message"`
	ID       string                 `json:"id,omitempty"`
	Summary  *models.SessionSummary `json:"summary"`
	Warnings []string               `json:"warnings,omitempty"`
}

// DeleteLabelResponse is the response for DELETE /api/labels/{id}
type DeleteLabelResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// PracticeRequest is the request body for POST /api/labels/{id}/practice
type PracticeRequest struct {
	UserID           string  `json:"user_id,omitempty"`
	PracticeDuration float64 `json:"practice_duration"`
	AccuracyScore    float64 `json:"accuracy_score"`
	PitchMatchScore  float64 `json:"pitch_match_score"`
	TimingScore      float64 `json:"timing_score"`
	ExpressionScore  float64 `json:"expression_score"`
	Notes            string  `json:"notes,omitempty"`
}

// Validate checks the scores are percentages and the duration is not negative
func (r *PracticeRequest) Validate() error {
	scores := map[string]float64{
		"accuracy_score":    r.AccuracyScore,
		"pitch_match_score": r.PitchMatchScore,
		"timing_score":      r.TimingScore,
		"expression_score":  r.ExpressionScore,
	}
	for name, v := range scores {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %v", name, v)
		}
	}
	if r.PracticeDuration < 0 {
		return fmt.Errorf("practice_duration cannot be negative")
	}
	return nil
}

func (r *PracticeRequest) toSession(labelID string) *models.LearningSession {
	return &models.LearningSession{
		LabelID:          labelID,
		UserID:           r.UserID,
		PracticeDuration: r.PracticeDuration,
		AccuracyScore:    r.AccuracyScore,
		PitchMatchScore:  r.PitchMatchScore,
		TimingScore:      r.TimingScore,
		ExpressionScore:  r.ExpressionScore,
		Notes:            r.Notes,
	}
}

// PracticeResponse is the response for POST /api/labels/{id}/practice
type PracticeResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
	LabelID string `json:"label_id"`
}

// EnginesResponse is the response for GET /api/health/engines
type EnginesResponse struct {
	Status  string          `json:"status"`
	Engines []engine.Status `json:"engines"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
