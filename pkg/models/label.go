package models

import "time"

// LabelMetadata describes where an analysed recording came from.
type LabelMetadata struct {
	SourceURL        string  `json:"source_url,omitempty"`
	YouTubeID        string  `json:"youtube_id,omitempty"`
	Title            string  `json:"title"`
	Artist           string  `json:"artist"`
	SongName         string  `json:"song_name,omitempty"`
	Category         string  `json:"category,omitempty"`
	Genre            string  `json:"genre,omitempty"`
	Language         string  `json:"language"`
	Notes            string  `json:"notes,omitempty"`
	UserRating       int     `json:"user_rating,omitempty"`
	DurationAnalyzed float64 `json:"duration_analyzed"`
}

// Label is a persisted session summary plus its metadata.
type Label struct {
	ID               string           `json:"id"`
	Metadata         LabelMetadata    `json:"metadata"`
	DetectedNotes    int              `json:"detected_notes"`
	AveragePitch     string           `json:"average_pitch"`
	AverageFrequency float64          `json:"average_frequency"`
	PitchRange       string           `json:"pitch_range"`
	MainTechnique    Technique        `json:"main_technique"`
	DominantRegister Register         `json:"dominant_register"`
	ConfidenceAvg    float64          `json:"confidence_avg"`
	TotalScore       float64          `json:"total_score"`
	Grade            Grade            `json:"grade"`
	DifficultyLevel  int              `json:"difficulty_level"`
	Performance      PerformanceScore `json:"performance_score"`
	Summary          *SessionSummary  `json:"summary,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewLabel copies the headline figures of a session summary into a label.
func NewLabel(meta LabelMetadata, s *SessionSummary) Label {
	l := Label{Metadata: meta, Summary: s}
	if s == nil {
		return l
	}
	if l.Metadata.DurationAnalyzed == 0 {
		l.Metadata.DurationAnalyzed = s.Duration
	}
	l.DetectedNotes = s.DetectedNotes
	l.AveragePitch = s.AveragePitch
	l.AverageFrequency = s.AverageFrequency
	l.PitchRange = s.PitchRange
	l.MainTechnique = s.MainTechnique
	l.DominantRegister = s.DominantRegister
	l.ConfidenceAvg = s.ConfidenceAvg
	l.TotalScore = s.Performance.Total
	l.Grade = s.Performance.Grade
	l.DifficultyLevel = s.DifficultyLevel
	l.Performance = s.Performance
	return l
}

// LearningSession is one practice run a user did against a label.
type LearningSession struct {
	ID               uint      `json:"id"`
	LabelID          string    `json:"label_id"`
	UserID           string    `json:"user_id"`
	SessionDate      time.Time `json:"session_date"`
	PracticeDuration float64   `json:"practice_duration"`
	AccuracyScore    float64   `json:"accuracy_score"`
	PitchMatchScore  float64   `json:"pitch_match_score"`
	TimingScore      float64   `json:"timing_score"`
	ExpressionScore  float64   `json:"expression_score"`
	Notes            string    `json:"notes,omitempty"`
}

type LearningStats struct {
	TotalSessions int     `json:"total_sessions"`
	AvgDuration   float64 `json:"avg_duration"`
	AvgAccuracy   float64 `json:"avg_accuracy"`
	AvgPitchMatch float64 `json:"avg_pitch_match"`
	BestAccuracy  float64 `json:"best_accuracy"`
}
