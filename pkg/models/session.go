package models

import "time"

type VibratoSummary struct {
	Detected     bool    `json:"detected"`
	Detections   int     `json:"detections"`
	AverageRate  float64 `json:"average_rate"`
	AverageDepth float64 `json:"average_depth"`
	Consistency  float64 `json:"consistency"`
}

type DynamicsSummary struct {
	DominantLevel     DynamicLevel         `json:"dominant_level"`
	LevelDistribution map[DynamicLevel]int `json:"level_distribution"`
	DynamicChanges    []DynamicTrend       `json:"dynamic_changes"`
	DynamicVariety    int                  `json:"dynamic_variety"`
	AverageAmplitude  float64              `json:"average_amplitude"`
}

type BreathSummary struct {
	Count        int       `json:"count"`
	Positions    []float64 `json:"positions"` // seconds
	Pattern      string    `json:"pattern"`
	SupportScore float64   `json:"support_score"`
}

// PassaggioEvent is a frame where the voice entered a passaggio band.
type PassaggioEvent struct {
	Time      float64        `json:"time"`
	Frequency float64        `json:"frequency"`
	Type      TransitionType `json:"type"`
}

type PassaggioSummary struct {
	Transitions       int              `json:"detected_transitions"`
	SmoothTransitions int              `json:"smooth_transitions"`
	Events            []PassaggioEvent `json:"events,omitempty"`
}

type TechniqueSummary struct {
	Distribution map[Technique]int `json:"distribution"`
	VarietyScore int               `json:"variety_score"`
	Stability    float64           `json:"stability"`
}

// EngineCounters tracks how one engine behaved during a session.
type EngineCounters struct {
	Calls       int `json:"calls"`
	Unavailable int `json:"unavailable"`
	Absent      int `json:"absent"`
}

type PedagogicalAverages struct {
	Overall      float64 `json:"overall"`
	Pitch        float64 `json:"pitch_accuracy"`
	Breath       float64 `json:"breath_management"`
	Articulation float64 `json:"articulation_precision"`
	GradeTrend   string  `json:"grade_trend"`
}

type HealthStatus struct {
	AverageStrain     float64   `json:"average_strain"`
	AverageEfficiency float64   `json:"average_efficiency"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Trend             string    `json:"trend"`
}

type DevelopmentPlan struct {
	Priorities []string `json:"priorities"`
	Exercises  []string `json:"exercises"`
	FocusLevel string   `json:"focus_level"`
}

// ProfessionalSummary condenses the most recent labels and assessments of a session.
type ProfessionalSummary struct {
	Frames               int                    `json:"frames"`
	MeanConfidence       float64                `json:"mean_confidence"`
	TimeRange            [2]float64             `json:"time_range"`
	RegisterDistribution map[Register]int       `json:"register_distribution"`
	VowelUsage           map[Vowel]int          `json:"vowel_usage"`
	DominantRegister     Register               `json:"dominant_register"`
	Pedagogy             PedagogicalAverages    `json:"pedagogical_scores"`
	Health               HealthStatus           `json:"vocal_health_status"`
	Plan                 DevelopmentPlan        `json:"development_plan"`
	Insights             []string               `json:"insights"`
	Latest               *PedagogicalAssessment `json:"latest_assessment,omitempty"`
}

type SessionSummary struct {
	SessionID        string                      `json:"session_id"`
	StartedAt        time.Time                   `json:"started_at"`
	Duration         float64                     `json:"duration"` // seconds of audio analysed
	FramesProcessed  int                         `json:"frames_processed"`
	FramesSkipped    int                         `json:"frames_skipped"`
	DetectedNotes    int                         `json:"detected_notes"`
	AverageFrequency float64                     `json:"average_frequency"`
	AveragePitch     string                      `json:"average_pitch"`
	PitchRange       string                      `json:"pitch_range"`
	MainTechnique    Technique                   `json:"main_technique"`
	DominantRegister Register                    `json:"dominant_register"`
	ConfidenceAvg    float64                     `json:"confidence_avg"`
	Vibrato          VibratoSummary              `json:"vibrato_analysis"`
	Dynamics         DynamicsSummary             `json:"dynamics_data"`
	Breath           BreathSummary               `json:"breath_analysis"`
	Passaggio        PassaggioSummary            `json:"passaggio_analysis"`
	Technique        TechniqueSummary            `json:"technique_analysis"`
	Performance      PerformanceScore            `json:"performance_score"`
	DifficultyLevel  int                         `json:"difficulty_level"`
	Professional     *ProfessionalSummary        `json:"professional_analysis,omitempty"`
	Frames           []FusedFrame                `json:"pitch_data"`
	NoteSequence     []NotePoint                 `json:"note_sequence"`
	EngineStats      map[EngineID]EngineCounters `json:"engine_stats"`
	Partial          bool                        `json:"partial"`
	Warnings         []string                    `json:"warnings,omitempty"`
}
